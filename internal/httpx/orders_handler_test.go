package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-order-inventory/internal/memstore"
	"github.com/ariefcatur/go-order-inventory/internal/orders"
)

func newTestServer(t *testing.T) (*httptest.Server, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	svc := orders.NewService(st, st, memstore.NewOrders(st), st)

	r := NewRouter()
	(&OrdersHandler{Svc: svc, Service: "order-api-test"}).Register(r)
	(&ProductsHandler{Svc: orders.NewProducts(st), Service: "order-api-test"}).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestOrderFlowOverHTTP(t *testing.T) {
	srv, st := newTestServer(t)
	st.PutUser(orders.User{ID: "u1", Name: "Arief", IsActive: true})

	// product dulu
	resp, prod := doJSON(t, http.MethodPost, srv.URL+"/products",
		map[string]any{"name": "Kopi", "price_cents": 1500, "stock": 10})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	productID := prod["id"].(string)

	// create order
	resp, got := doJSON(t, http.MethodPost, srv.URL+"/orders", map[string]any{
		"user_id": "u1",
		"items":   []map[string]any{{"product_id": productID, "qty": 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "PENDING", got["status"])
	require.EqualValues(t, 4500, got["total_cents"])
	orderID := got["id"].(string)

	// stock berkurang
	resp, prod = doJSON(t, http.MethodGet, srv.URL+"/products/"+productID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 7, prod["stock"])

	// status endpoint (tanpa redis -> fallback service)
	resp, st2 := doJSON(t, http.MethodGet, srv.URL+"/orders/"+orderID+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "PENDING", st2["status"])

	// cancel -> stock balik
	resp, got = doJSON(t, http.MethodPost, srv.URL+"/orders/"+orderID+"/cancel", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "CANCELLED", got["status"])

	resp, prod = doJSON(t, http.MethodGet, srv.URL+"/products/"+productID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 10, prod["stock"])

	// delete setelah cancel boleh
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/orders/"+orderID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestErrorKindMapping(t *testing.T) {
	srv, st := newTestServer(t)
	st.PutUser(orders.User{ID: "u1", Name: "Arief", IsActive: true})

	resp, prod := doJSON(t, http.MethodPost, srv.URL+"/products",
		map[string]any{"name": "Kopi", "price_cents": 1500, "stock": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	productID := prod["id"].(string)

	t.Run("not found -> 404", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/orders/ghost", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "not_found", body["kind"])
	})

	t.Run("invalid input -> 400", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/orders",
			map[string]any{"user_id": "u1", "items": []any{}})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "invalid_input", body["kind"])
	})

	t.Run("insufficient stock -> 422", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/orders", map[string]any{
			"user_id": "u1",
			"items":   []map[string]any{{"product_id": productID, "qty": 5}},
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Equal(t, "invalid_state", body["kind"])
	})

	t.Run("duplicate product -> 409", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/products",
			map[string]any{"name": "Kopi", "price_cents": 2000, "stock": 2})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.Equal(t, "conflict", body["kind"])
	})

	t.Run("delete pending -> 422", func(t *testing.T) {
		resp, got := doJSON(t, http.MethodPost, srv.URL+"/orders", map[string]any{
			"user_id": "u1",
			"items":   []map[string]any{{"product_id": productID, "qty": 1}},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp, body := doJSON(t, http.MethodDelete, srv.URL+"/orders/"+got["id"].(string), nil)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Equal(t, "invalid_state", body["kind"])
	})
}

func TestUpdateStatusOverHTTP(t *testing.T) {
	srv, st := newTestServer(t)
	st.PutUser(orders.User{ID: "u1", Name: "Arief", IsActive: true})

	resp, prod := doJSON(t, http.MethodPost, srv.URL+"/products",
		map[string]any{"name": "Kopi", "price_cents": 1500, "stock": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	productID := prod["id"].(string)

	resp, got := doJSON(t, http.MethodPost, srv.URL+"/orders", map[string]any{
		"user_id": "u1",
		"items":   []map[string]any{{"product_id": productID, "qty": 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := got["id"].(string)

	resp, got = doJSON(t, http.MethodPut, srv.URL+"/orders/"+orderID+"/status",
		map[string]any{"status": "PROCESSING"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "PROCESSING", got["status"])

	// PUT status CANCELLED harus lewat jalur cancel: stock balik
	resp, got = doJSON(t, http.MethodPut, srv.URL+"/orders/"+orderID+"/status",
		map[string]any{"status": "CANCELLED"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode,
		"non-PENDING tidak bisa dibatalkan, juga lewat update generik")

	// order PENDING baru
	resp, got = doJSON(t, http.MethodPost, srv.URL+"/orders", map[string]any{
		"user_id": "u1",
		"items":   []map[string]any{{"product_id": productID, "qty": 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID = got["id"].(string)

	resp, got = doJSON(t, http.MethodPut, srv.URL+"/orders/"+orderID+"/status",
		map[string]any{"status": "CANCELLED"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "CANCELLED", got["status"])

	resp, prod = doJSON(t, http.MethodGet, srv.URL+"/products/"+productID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 3, prod["stock"], "stock order kedua kembali, order pertama masih reserved")
}
