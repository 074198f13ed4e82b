package orders

import "context"

// Products membungkus manajemen katalog seputar stock & availability.
type Products struct {
	store ProductStore
}

func NewProducts(store ProductStore) *Products {
	return &Products{store: store}
}

func (p *Products) Create(ctx context.Context, np Product) (*Product, error) {
	if np.Name == "" {
		return nil, InvalidInputf("product name is required")
	}
	if np.PriceCents <= 0 {
		return nil, InvalidInputf("price must be greater than 0")
	}
	if np.Stock < 0 {
		return nil, InvalidInputf("stock cannot be negative")
	}
	existing, err := p.store.FindByName(ctx, np.Name)
	if err != nil && !IsKind(err, KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, Conflictf("product name %q already exists", np.Name)
	}

	cp := np
	cp.IsActive = true
	cp.IsAvailable = cp.Stock > 0
	if err := p.store.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (p *Products) Get(ctx context.Context, id string) (*Product, error) {
	return p.store.FindActive(ctx, id)
}

func (p *Products) ListActive(ctx context.Context) ([]Product, error) {
	return p.store.FindAllActive(ctx)
}

func (p *Products) ListAvailable(ctx context.Context) ([]Product, error) {
	return p.store.FindAvailable(ctx)
}

// SetStock menulis stock absolut; availability dihitung ulang oleh store
// dalam update yang sama.
func (p *Products) SetStock(ctx context.Context, id string, stock int) (*Product, error) {
	if stock < 0 {
		return nil, InvalidInputf("stock cannot be negative")
	}
	if _, err := p.store.FindActive(ctx, id); err != nil {
		return nil, err
	}
	return p.store.SetStock(ctx, id, stock)
}

// Remove soft-delete: product hilang dari katalog tapi OrderItem historis
// yang mereferensikannya tetap valid.
func (p *Products) Remove(ctx context.Context, id string) error {
	prod, err := p.store.FindActive(ctx, id)
	if err != nil {
		return err
	}
	prod.IsActive = false
	prod.IsAvailable = false
	return p.store.Save(ctx, prod)
}
