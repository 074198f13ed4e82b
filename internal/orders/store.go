package orders

import "context"

// UserDirectory adalah kolaborator eksternal untuk lookup user.
type UserDirectory interface {
	// GetUser gagal dengan KindNotFound kalau id tidak resolve.
	GetUser(ctx context.Context, id string) (*User, error)
}

type ProductStore interface {
	Create(ctx context.Context, p *Product) error
	// FindActive gagal dengan KindNotFound kalau product tidak ada ATAU
	// sudah di-soft-delete. Di dalam transaksi, row product harus
	// ter-lock sampai commit (serialisasi check-then-decrement per product).
	FindActive(ctx context.Context, id string) (*Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	FindAllActive(ctx context.Context) ([]Product, error)
	FindAvailable(ctx context.Context) ([]Product, error)
	// SetStock menulis stock baru dan menghitung ulang IsAvailable = stock > 0
	// dalam satu update. IsAvailable tidak pernah di-set terpisah.
	SetStock(ctx context.Context, id string, stock int) (*Product, error)
	Save(ctx context.Context, p *Product) error
}

type OrderStore interface {
	Create(ctx context.Context, o *Order) error
	AddItem(ctx context.Context, it *OrderItem) error
	// Find mengembalikan order lengkap dengan items + product tiap item.
	Find(ctx context.Context, id string) (*Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	FindByUser(ctx context.Context, userID string) ([]Order, error)
	Save(ctx context.Context, o *Order) error
	// Remove menghapus order beserta items-nya (cascade).
	Remove(ctx context.Context, o *Order) error
}

// TxManager membungkus fn dalam satu transaksi; error apa pun dari fn
// membatalkan seluruh perubahan di dalamnya.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
