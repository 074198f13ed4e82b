package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-order-inventory/internal/kafka"
	"github.com/ariefcatur/go-order-inventory/internal/orders"
	"github.com/ariefcatur/go-order-inventory/internal/redisx"
)

type OrdersHandler struct {
	Svc          *orders.Service
	Redis        *redis.Client
	PubCreated   *kafkax.Producer
	PubCancelled *kafkax.Producer
	PubStatus    *kafkax.Producer
	Service      string
}

type CreateOrderReq struct {
	UserID string             `json:"user_id"`
	Items  []orders.ItemInput `json:"items"`
}

type UpdateStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders", h.list)
	r.Post("/orders", h.create)
	r.Get("/orders/{id}", h.get)
	r.Get("/orders/{id}/status", h.getStatus)
	r.Put("/orders/{id}/status", h.updateStatus)
	r.Post("/orders/{id}/cancel", h.cancel)
	r.Delete("/orders/{id}", h.remove)
	r.Get("/users/{id}/orders", h.listForUser)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	os, err := h.Svc.List(ctx)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderViews(os))
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Svc.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderView(o))
}

// getStatus: fast path lewat cache Redis, fallback DB + isi ulang cache.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Svc.Get(ctx, orderID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	h.cacheStatus(ctx, o.ID, o.Status)
	writeJSON(w, http.StatusOK, map[string]orders.Status{"status": o.Status})
}

func (h *OrdersHandler) listForUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	os, err := h.Svc.ListForUser(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderViews(os))
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Create(ctx, req.UserID, req.Items)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)

	items := make([]orders.ItemPrice, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orders.ItemPrice{
			ProductID: it.ProductID, Qty: it.Qty, PriceCents: it.PriceCents,
		})
	}
	h.publish(r, h.PubCreated, orders.EventOrderCreated, o.ID, orders.OrderCreatedPayload{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Items:      items,
		TotalCents: o.TotalCents,
	})

	writeJSON(w, http.StatusCreated, toOrderView(o))
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	// target CANCELLED lewat jalur cancel, supaya event & restorasi stok konsisten
	if req.Status == orders.StatusCancelled {
		h.cancel(w, r)
		return
	}

	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	before, err := h.Svc.Get(ctx, orderID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	o, err := h.Svc.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	if before.Status != o.Status {
		h.publish(r, h.PubStatus, orders.EventOrderStatusChanged, o.ID, orders.OrderStatusChangedPayload{
			OrderID:   o.ID,
			OldStatus: before.Status,
			NewStatus: o.Status,
		})
	}
	writeJSON(w, http.StatusOK, toOrderView(o))
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Svc.Cancel(ctx, orderID)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)

	restored := make([]orders.ItemQty, 0, len(o.Items))
	for _, it := range o.Items {
		restored = append(restored, orders.ItemQty{ProductID: it.ProductID, Qty: it.Qty})
	}
	h.publish(r, h.PubCancelled, orders.EventOrderCancelled, o.ID, orders.OrderCancelledPayload{
		OrderID:  o.ID,
		Restored: restored,
	})

	writeJSON(w, http.StatusOK, toOrderView(o))
}

func (h *OrdersHandler) remove(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.Remove(ctx, orderID); err != nil {
		writeErr(w, r, err)
		return
	}
	if h.Redis != nil {
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, st orders.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body := fmt.Sprintf(`{"status":%q}`, st)
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publish(r *http.Request, p *kafkax.Producer, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
