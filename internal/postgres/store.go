package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ariefcatur/go-order-inventory/internal/orders"
)

const pgUniqueViolation = "23505"

// --- users ---

type Users struct{ db *DB }

func NewUsers(db *DB) *Users { return &Users{db: db} }

var _ orders.UserDirectory = (*Users)(nil)

func (r *Users) GetUser(ctx context.Context, id string) (*orders.User, error) {
	var u orders.User
	err := r.db.q(ctx).QueryRow(ctx,
		`SELECT id, name, is_active FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.NotFoundf("user %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// --- products ---

type Products struct{ db *DB }

func NewProducts(db *DB) *Products { return &Products{db: db} }

var _ orders.ProductStore = (*Products)(nil)

const productCols = `id, name, price_cents, stock, is_active, is_available, created_at, updated_at`

func scanProduct(row pgx.Row) (*orders.Product, error) {
	var p orders.Product
	err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock,
		&p.IsActive, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Products) Create(ctx context.Context, p *orders.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	err := r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO products(id, name, price_cents, stock, is_active, is_available)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.PriceCents, p.Stock, p.IsActive, p.IsAvailable).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return orders.Conflictf("product name %q already exists", p.Name)
	}
	return err
}

// FindActive: di dalam transaksi row di-lock (FOR UPDATE) supaya
// check-then-decrement stock terserialisasi per product antar request.
func (r *Products) FindActive(ctx context.Context, id string) (*orders.Product, error) {
	q := `SELECT ` + productCols + ` FROM products WHERE id=$1 AND is_active`
	if inTx(ctx) {
		q += ` FOR UPDATE`
	}
	p, err := scanProduct(r.db.q(ctx).QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.NotFoundf("product %s not found", id)
	}
	return p, err
}

func (r *Products) FindByName(ctx context.Context, name string) (*orders.Product, error) {
	p, err := scanProduct(r.db.q(ctx).QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE name=$1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.NotFoundf("product %q not found", name)
	}
	return p, err
}

func (r *Products) listWhere(ctx context.Context, where string) ([]orders.Product, error) {
	rows, err := r.db.q(ctx).Query(ctx,
		`SELECT `+productCols+` FROM products WHERE `+where+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orders.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Products) FindAllActive(ctx context.Context) ([]orders.Product, error) {
	return r.listWhere(ctx, `is_active`)
}

func (r *Products) FindAvailable(ctx context.Context) ([]orders.Product, error) {
	return r.listWhere(ctx, `is_active AND is_available`)
}

// SetStock menulis stock + availability turunan dalam satu UPDATE,
// tidak ada window di mana keduanya tidak konsisten.
func (r *Products) SetStock(ctx context.Context, id string, stock int) (*orders.Product, error) {
	p, err := scanProduct(r.db.q(ctx).QueryRow(ctx, `
		UPDATE products SET stock=$2, is_available=($2 > 0), updated_at=now()
		WHERE id=$1
		RETURNING `+productCols, id, stock))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.NotFoundf("product %s not found", id)
	}
	return p, err
}

func (r *Products) Save(ctx context.Context, p *orders.Product) error {
	ct, err := r.db.q(ctx).Exec(ctx, `
		UPDATE products SET name=$2, price_cents=$3, stock=$4,
		       is_active=$5, is_available=$6, updated_at=now()
		WHERE id=$1`,
		p.ID, p.Name, p.PriceCents, p.Stock, p.IsActive, p.IsAvailable)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return orders.NotFoundf("product %s not found", p.ID)
	}
	return nil
}

// --- orders ---

type Orders struct{ db *DB }

func NewOrders(db *DB) *Orders { return &Orders{db: db} }

var _ orders.OrderStore = (*Orders)(nil)

func (r *Orders) Create(ctx context.Context, o *orders.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO orders(id, user_id, status, total_cents)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.Status, o.TotalCents).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *Orders) AddItem(ctx context.Context, it *orders.OrderItem) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO order_items(id, order_id, product_id, qty, price_cents)
		VALUES ($1,$2,$3,$4,$5)`,
		it.ID, it.OrderID, it.ProductID, it.Qty, it.PriceCents)
	return err
}

// loadItems: items + product tiap item (relation expansion).
func (r *Orders) loadItems(ctx context.Context, orderID string) ([]orders.OrderItem, error) {
	rows, err := r.db.q(ctx).Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.qty, i.price_cents,
		       p.id, p.name, p.price_cents, p.stock, p.is_active, p.is_available,
		       p.created_at, p.updated_at
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id=$1
		ORDER BY i.created_at, i.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orders.OrderItem, 0)
	for rows.Next() {
		var it orders.OrderItem
		var p orders.Product
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &it.PriceCents,
			&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.IsActive, &p.IsAvailable,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		it.Product = &p
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Orders) Find(ctx context.Context, id string) (*orders.Order, error) {
	var o orders.Order
	err := r.db.q(ctx).QueryRow(ctx, `
		SELECT id, user_id, status, total_cents, created_at, updated_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, orders.NotFoundf("order %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.loadItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Orders) list(ctx context.Context, where string, args ...any) ([]orders.Order, error) {
	q := `SELECT id, user_id, status, total_cents, created_at, updated_at FROM orders`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY created_at`
	rows, err := r.db.q(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orders.Order, 0)
	for rows.Next() {
		var o orders.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = r.loadItems(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Orders) FindAll(ctx context.Context) ([]orders.Order, error) {
	return r.list(ctx, "")
}

func (r *Orders) FindByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	return r.list(ctx, `user_id=$1`, userID)
}

func (r *Orders) Save(ctx context.Context, o *orders.Order) error {
	ct, err := r.db.q(ctx).Exec(ctx, `
		UPDATE orders SET status=$2, total_cents=$3, updated_at=now()
		WHERE id=$1`, o.ID, o.Status, o.TotalCents)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return orders.NotFoundf("order %s not found", o.ID)
	}
	return nil
}

// Remove: order_items ikut terhapus lewat FK ON DELETE CASCADE.
func (r *Orders) Remove(ctx context.Context, o *orders.Order) error {
	ct, err := r.db.q(ctx).Exec(ctx, `DELETE FROM orders WHERE id=$1`, o.ID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return orders.NotFoundf("order %s not found", o.ID)
	}
	return nil
}
