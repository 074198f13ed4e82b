package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-order-inventory/internal/orders"
)

func TestWithinTxRollback(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.Create(ctx, &orders.Product{ID: "p1", Name: "A", PriceCents: 100, Stock: 5, IsActive: true, IsAvailable: true}))

	boom := errors.New("boom")
	err := st.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := st.SetStock(ctx, "p1", 1); err != nil {
			return err
		}
		// perubahan di dalam tx kelihatan oleh read berikutnya
		p, err := st.FindActive(ctx, "p1")
		if err != nil {
			return err
		}
		require.Equal(t, 1, p.Stock)
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := st.FindActive(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 5, p.Stock, "rollback harus mengembalikan state pre-tx")
}

func TestWithinTxCommit(t *testing.T) {
	ctx := context.Background()
	st := New()
	ords := NewOrders(st)
	require.NoError(t, st.Create(ctx, &orders.Product{ID: "p1", Name: "A", PriceCents: 100, Stock: 5, IsActive: true, IsAvailable: true}))

	err := st.WithinTx(ctx, func(ctx context.Context) error {
		o := &orders.Order{UserID: "u1", Status: orders.StatusPending}
		if err := ords.Create(ctx, o); err != nil {
			return err
		}
		if err := ords.AddItem(ctx, &orders.OrderItem{OrderID: o.ID, ProductID: "p1", Qty: 2, PriceCents: 100}); err != nil {
			return err
		}
		_, err := st.SetStock(ctx, "p1", 3)
		return err
	})
	require.NoError(t, err)

	all, err := ords.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Len(t, all[0].Items, 1)
	require.NotNil(t, all[0].Items[0].Product, "relation expansion product per item")

	p, err := st.FindActive(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 3, p.Stock)
}

func TestCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	st := New()
	require.NoError(t, st.Create(ctx, &orders.Product{ID: "p1", Name: "A", PriceCents: 100, Stock: 5, IsActive: true, IsAvailable: true}))

	p, err := st.FindActive(ctx, "p1")
	require.NoError(t, err)
	p.Stock = 999 // mutasi copy, bukan store

	again, err := st.FindActive(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 5, again.Stock)
}

func TestOrderRemoveCascadesItems(t *testing.T) {
	ctx := context.Background()
	st := New()
	ords := NewOrders(st)

	o := &orders.Order{UserID: "u1", Status: orders.StatusCancelled}
	require.NoError(t, ords.Create(ctx, o))
	require.NoError(t, ords.AddItem(ctx, &orders.OrderItem{OrderID: o.ID, ProductID: "p1", Qty: 1, PriceCents: 10}))

	require.NoError(t, ords.Remove(ctx, o))
	_, err := ords.Find(ctx, o.ID)
	require.True(t, orders.IsKind(err, orders.KindNotFound))
	require.Empty(t, st.items[o.ID])
}
