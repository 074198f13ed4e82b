package orders

import "time"

// User datang dari directory eksternal; di sini cuma butuh flag aktifnya.
type User struct {
	ID       string
	Name     string
	IsActive bool
}

type Product struct {
	ID          string
	Name        string
	PriceCents  int
	Stock       int
	IsActive    bool
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Order struct {
	ID         string
	UserID     string
	Status     Status // lihat status.go
	TotalCents int
	Items      []OrderItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type OrderItem struct {
	ID         string
	OrderID    string
	ProductID  string
	Qty        int
	PriceCents int // snapshot harga product saat reservasi, tidak berubah lagi
	Product    *Product
}

// ItemInput adalah satu line item dalam request create order.
type ItemInput struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}
