package orders

import "context"

// Service memegang dua tanggung jawab inti: reservasi stok (create/cancel)
// dan lifecycle status order (update/remove).
type Service struct {
	users    UserDirectory
	products ProductStore
	orders   OrderStore
	tx       TxManager
}

func NewService(users UserDirectory, products ProductStore, orders OrderStore, tx TxManager) *Service {
	return &Service{users: users, products: products, orders: orders, tx: tx}
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.FindAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.Find(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.orders.FindByUser(ctx, u.ID)
}

// Create memvalidasi dan mereservasi stok untuk seluruh line item secara
// atomik: kalau item ke-k gagal, reservasi item 1..k-1 ikut batal dan tidak
// ada Order/OrderItem yang tersimpan. Items diproses sesuai urutan caller,
// jadi line item duplikat untuk product yang sama berebut stok dalam urutan
// list (line pertama menang).
func (s *Service) Create(ctx context.Context, userID string, items []ItemInput) (*Order, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, InvalidStatef("user %s is not active", u.ID)
	}
	if len(items) == 0 {
		return nil, InvalidInputf("order must have at least one item")
	}

	var orderID string
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Order dibuat dulu supaya items punya identity untuk direferensikan;
		// total baru final setelah semua item berhasil direservasi.
		o := &Order{UserID: u.ID, Status: StatusPending}
		if err := s.orders.Create(ctx, o); err != nil {
			return err
		}

		total := 0
		for _, in := range items {
			if in.Qty <= 0 {
				return InvalidInputf("quantity must be greater than 0")
			}
			// FindActive di dalam transaksi me-lock row product, jadi
			// check-then-decrement terserialisasi per product.
			p, err := s.products.FindActive(ctx, in.ProductID)
			if err != nil {
				return err
			}
			if !p.IsAvailable {
				return InvalidStatef("product %s is not available", p.Name)
			}
			if p.Stock < in.Qty {
				return InvalidStatef("not enough stock for %s", p.Name)
			}
			it := &OrderItem{
				OrderID:    o.ID,
				ProductID:  p.ID,
				Qty:        in.Qty,
				PriceCents: p.PriceCents, // snapshot harga saat ini
			}
			if err := s.orders.AddItem(ctx, it); err != nil {
				return err
			}
			if _, err := s.products.SetStock(ctx, p.ID, p.Stock-in.Qty); err != nil {
				return err
			}
			total += p.PriceCents * in.Qty
		}

		o.TotalCents = total
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		orderID = o.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.orders.Find(ctx, orderID)
}

// Cancel mengembalikan stok semua item lalu flip status ke CANCELLED,
// keduanya dalam satu transaksi. Hanya order PENDING yang boleh dibatalkan.
func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	var out *Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.orders.Find(ctx, id)
		if err != nil {
			return err
		}
		if o.Status != StatusPending {
			return InvalidStatef("only pending orders can be cancelled")
		}
		for _, it := range o.Items {
			p, err := s.products.FindActive(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if _, err := s.products.SetStock(ctx, p.ID, p.Stock+it.Qty); err != nil {
				return err
			}
		}
		o.Status = StatusCancelled
		if err := s.orders.Save(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus menjalankan state machine status. Target CANCELLED
// didelegasikan ke Cancel supaya restorasi stok tidak pernah ke-skip
// lewat jalur update generik.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (*Order, error) {
	if !to.Valid() {
		return nil, InvalidInputf("unknown order status %q", to)
	}
	if to == StatusCancelled {
		return s.Cancel(ctx, id)
	}

	o, err := s.orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(o.Status, to); err != nil {
		return nil, err
	}
	if o.Status == to {
		return o, nil // no-op idempotent
	}
	o.Status = to
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Remove menghapus order + items-nya. Order PENDING tidak boleh dihapus:
// reservasi stoknya belum pernah dikembalikan.
func (s *Service) Remove(ctx context.Context, id string) error {
	o, err := s.orders.Find(ctx, id)
	if err != nil {
		return err
	}
	if o.Status == StatusPending {
		return InvalidStatef("cannot delete pending orders")
	}
	return s.orders.Remove(ctx, o)
}
