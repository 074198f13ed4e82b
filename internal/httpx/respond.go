package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-order-inventory/internal/logging"
	"github.com/ariefcatur/go-order-inventory/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr mapping taxonomy -> status code. Error storage mentah tidak
// bocor ke caller, cuma ke log.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	kind := orders.KindOf(err)
	msg := err.Error()
	var code int
	switch kind {
	case orders.KindNotFound:
		code = http.StatusNotFound
	case orders.KindInvalidInput:
		code = http.StatusBadRequest
	case orders.KindInvalidState:
		code = http.StatusUnprocessableEntity
	case orders.KindConflict:
		code = http.StatusConflict
	default:
		logging.FromCtx(r.Context()).Error("internal error",
			"method", r.Method, "path", r.URL.Path, "error", err)
		code = http.StatusInternalServerError
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"error": msg, "kind": kind.String()})
}

// --- JSON views (domain structs sengaja tanpa tags) ---

type productView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PriceCents  int       `json:"price_cents"`
	Stock       int       `json:"stock"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type orderItemView struct {
	ID         string       `json:"id"`
	ProductID  string       `json:"product_id"`
	Qty        int          `json:"qty"`
	PriceCents int          `json:"price_cents"`
	Product    *productView `json:"product,omitempty"`
}

type orderView struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Status     orders.Status   `json:"status"`
	TotalCents int             `json:"total_cents"`
	Items      []orderItemView `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func toProductView(p *orders.Product) *productView {
	if p == nil {
		return nil
	}
	return &productView{
		ID:          p.ID,
		Name:        p.Name,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		IsAvailable: p.IsAvailable,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toOrderView(o *orders.Order) orderView {
	v := orderView{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		Items:      make([]orderItemView, 0, len(o.Items)),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, orderItemView{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Qty:        it.Qty,
			PriceCents: it.PriceCents,
			Product:    toProductView(it.Product),
		})
	}
	return v
}

func toOrderViews(os []orders.Order) []orderView {
	out := make([]orderView, 0, len(os))
	for i := range os {
		out = append(out, toOrderView(&os[i]))
	}
	return out
}

func toProductViews(ps []orders.Product) []productView {
	out := make([]productView, 0, len(ps))
	for i := range ps {
		out = append(out, *toProductView(&ps[i]))
	}
	return out
}
