// Package memstore adalah implementasi in-memory dari store contracts,
// dipakai oleh test. Transaksi = write lock global + snapshot, di-restore
// kalau fn transaksi gagal.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-order-inventory/internal/orders"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]orders.User
	products map[string]orders.Product
	ords     map[string]orders.Order
	items    map[string][]orders.OrderItem // per order id, urut insert
}

func New() *Store {
	return &Store{
		users:    make(map[string]orders.User),
		products: make(map[string]orders.Product),
		ords:     make(map[string]orders.Order),
		items:    make(map[string][]orders.OrderItem),
	}
}

var (
	_ orders.UserDirectory = (*Store)(nil)
	_ orders.ProductStore  = (*Store)(nil)
	_ orders.TxManager     = (*Store)(nil)
	_ orders.OrderStore    = (*Orders)(nil)
)

// --- transaction plumbing ---

type txKey struct{}

func inTx(ctx context.Context) bool {
	b, ok := ctx.Value(txKey{}).(bool)
	return ok && b
}

func (s *Store) rlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RLock()
	}
}
func (s *Store) runlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RUnlock()
	}
}
func (s *Store) wlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Lock()
	}
}
func (s *Store) wunlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Unlock()
	}
}

type snapshot struct {
	products map[string]orders.Product
	ords     map[string]orders.Order
	items    map[string][]orders.OrderItem
}

func (s *Store) snap() snapshot {
	sn := snapshot{
		products: make(map[string]orders.Product, len(s.products)),
		ords:     make(map[string]orders.Order, len(s.ords)),
		items:    make(map[string][]orders.OrderItem, len(s.items)),
	}
	for k, v := range s.products {
		sn.products[k] = v
	}
	for k, v := range s.ords {
		sn.ords[k] = v
	}
	for k, v := range s.items {
		cp := make([]orders.OrderItem, len(v))
		copy(cp, v)
		sn.items[k] = cp
	}
	return sn
}

// WithinTx memegang write lock selama fn jalan; ctx ditandai supaya store
// methods tidak nge-lock lagi. Error dari fn -> state kembali ke snapshot.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sn := s.snap()
	ctx = context.WithValue(ctx, txKey{}, true)
	if err := fn(ctx); err != nil {
		s.products = sn.products
		s.ords = sn.ords
		s.items = sn.items
		return err
	}
	return nil
}

// --- UserDirectory ---

// PutUser seed untuk test/demo.
func (s *Store) PutUser(u orders.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = u
}

func (s *Store) GetUser(ctx context.Context, id string) (*orders.User, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	u, ok := s.users[id]
	if !ok {
		return nil, orders.NotFoundf("user %s not found", id)
	}
	cp := u
	return &cp, nil
}

// --- ProductStore ---

func (s *Store) Create(ctx context.Context, p *orders.Product) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = *p
	return nil
}

func (s *Store) FindActive(ctx context.Context, id string) (*orders.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	p, ok := s.products[id]
	if !ok || !p.IsActive {
		return nil, orders.NotFoundf("product %s not found", id)
	}
	cp := p
	return &cp, nil
}

func (s *Store) FindByName(ctx context.Context, name string) (*orders.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	for _, p := range s.products {
		if p.Name == name {
			cp := p
			return &cp, nil
		}
	}
	return nil, orders.NotFoundf("product %q not found", name)
}

func (s *Store) FindAllActive(ctx context.Context) ([]orders.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	out := make([]orders.Product, 0)
	for _, p := range s.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) FindAvailable(ctx context.Context) ([]orders.Product, error) {
	s.rlock(ctx)
	defer s.runlock(ctx)
	out := make([]orders.Product, 0)
	for _, p := range s.products {
		if p.IsActive && p.IsAvailable {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) SetStock(ctx context.Context, id string, stock int) (*orders.Product, error) {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	p, ok := s.products[id]
	if !ok {
		return nil, orders.NotFoundf("product %s not found", id)
	}
	p.Stock = stock
	p.IsAvailable = stock > 0 // derived, selalu dihitung ulang di sini
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	cp := p
	return &cp, nil
}

func (s *Store) Save(ctx context.Context, p *orders.Product) error {
	s.wlock(ctx)
	defer s.wunlock(ctx)
	if _, ok := s.products[p.ID]; !ok {
		return orders.NotFoundf("product %s not found", p.ID)
	}
	p.UpdatedAt = time.Now().UTC()
	s.products[p.ID] = *p
	return nil
}

// --- OrderStore (wrapper, nama method bentrok dengan ProductStore) ---

type Orders struct{ s *Store }

func NewOrders(s *Store) *Orders { return &Orders{s: s} }

func (o *Orders) Create(ctx context.Context, ord *orders.Order) error {
	o.s.wlock(ctx)
	defer o.s.wunlock(ctx)
	if ord.ID == "" {
		ord.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ord.CreatedAt, ord.UpdatedAt = now, now
	cp := *ord
	cp.Items = nil // items disimpan terpisah
	o.s.ords[ord.ID] = cp
	return nil
}

func (o *Orders) AddItem(ctx context.Context, it *orders.OrderItem) error {
	o.s.wlock(ctx)
	defer o.s.wunlock(ctx)
	if _, ok := o.s.ords[it.OrderID]; !ok {
		return orders.NotFoundf("order %s not found", it.OrderID)
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	cp := *it
	cp.Product = nil
	o.s.items[it.OrderID] = append(o.s.items[it.OrderID], cp)
	return nil
}

func (o *Orders) expand(ord orders.Order) orders.Order {
	its := o.s.items[ord.ID]
	ord.Items = make([]orders.OrderItem, len(its))
	copy(ord.Items, its)
	for i := range ord.Items {
		if p, ok := o.s.products[ord.Items[i].ProductID]; ok {
			cp := p
			ord.Items[i].Product = &cp
		}
	}
	return ord
}

func (o *Orders) Find(ctx context.Context, id string) (*orders.Order, error) {
	o.s.rlock(ctx)
	defer o.s.runlock(ctx)
	ord, ok := o.s.ords[id]
	if !ok {
		return nil, orders.NotFoundf("order %s not found", id)
	}
	out := o.expand(ord)
	return &out, nil
}

func (o *Orders) FindAll(ctx context.Context) ([]orders.Order, error) {
	o.s.rlock(ctx)
	defer o.s.runlock(ctx)
	out := make([]orders.Order, 0, len(o.s.ords))
	for _, ord := range o.s.ords {
		out = append(out, o.expand(ord))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (o *Orders) FindByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	o.s.rlock(ctx)
	defer o.s.runlock(ctx)
	out := make([]orders.Order, 0)
	for _, ord := range o.s.ords {
		if ord.UserID == userID {
			out = append(out, o.expand(ord))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (o *Orders) Save(ctx context.Context, ord *orders.Order) error {
	o.s.wlock(ctx)
	defer o.s.wunlock(ctx)
	if _, ok := o.s.ords[ord.ID]; !ok {
		return orders.NotFoundf("order %s not found", ord.ID)
	}
	ord.UpdatedAt = time.Now().UTC()
	cp := *ord
	cp.Items = nil
	o.s.ords[ord.ID] = cp
	return nil
}

func (o *Orders) Remove(ctx context.Context, ord *orders.Order) error {
	o.s.wlock(ctx)
	defer o.s.wunlock(ctx)
	if _, ok := o.s.ords[ord.ID]; !ok {
		return orders.NotFoundf("order %s not found", ord.ID)
	}
	delete(o.s.ords, ord.ID)
	delete(o.s.items, ord.ID)
	return nil
}
