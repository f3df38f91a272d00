package httpapi

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/printpoint/storefront/internal/cart"
	"github.com/printpoint/storefront/internal/catalog"
	"github.com/printpoint/storefront/internal/order"
)

// memStore is an in-memory cart.Store for handler tests.
type memStore struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart

	getErr error
}

func newMemStore() *memStore {
	return &memStore{carts: make(map[string]*cart.Cart)}
}

func (s *memStore) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.carts[sessionID], nil
}

func (s *memStore) Save(ctx context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.SessionID] = c
	return nil
}

func (s *memStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

type fakeCatalogRepo struct {
	products map[string]*catalog.Product
}

func newFakeCatalogRepo(products ...*catalog.Product) *fakeCatalogRepo {
	m := make(map[string]*catalog.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeCatalogRepo{products: m}
}

func (f *fakeCatalogRepo) Create(ctx context.Context, p *catalog.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeCatalogRepo) GetByID(ctx context.Context, productID string) (*catalog.Product, error) {
	if p, ok := f.products[productID]; ok {
		return p, nil
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalogRepo) GetByIDs(ctx context.Context, productIDs []string) (map[string]*catalog.Product, error) {
	out := make(map[string]*catalog.Product)
	for _, id := range productIDs {
		if p, ok := f.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListActive(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) SetStock(ctx context.Context, productID string, quantity int) error {
	p, ok := f.products[productID]
	if !ok {
		return catalog.ErrNotFound
	}
	p.StockQuantity = quantity
	p.InStock = quantity > 0
	return nil
}

func (f *fakeCatalogRepo) DecrementStock(ctx context.Context, ex catalog.Execer, productID string, quantity int) error {
	p, ok := f.products[productID]
	if !ok || p.StockQuantity < quantity {
		return catalog.ErrInsufficientStock
	}
	p.StockQuantity -= quantity
	p.InStock = p.StockQuantity > 0
	return nil
}

type fakeOrderRepo struct {
	createFunc       func(ctx context.Context, ex order.Execer, o *order.Order) error
	getByIDFunc      func(ctx context.Context, orderID string) (*order.Order, error)
	listByUserFunc   func(ctx context.Context, userID string) ([]order.Order, error)
	updateStatusFunc func(ctx context.Context, orderID string, next order.Status) error
}

func (f *fakeOrderRepo) Create(ctx context.Context, ex order.Execer, o *order.Order) error {
	if f.createFunc != nil {
		return f.createFunc(ctx, ex, o)
	}
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	if f.getByIDFunc != nil {
		return f.getByIDFunc(ctx, orderID)
	}
	return nil, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	if f.listByUserFunc != nil {
		return f.listByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID string, next order.Status) error {
	if f.updateStatusFunc != nil {
		return f.updateStatusFunc(ctx, orderID, next)
	}
	return nil
}

func testProduct(id, name, sku, price string, stock int) *catalog.Product {
	return &catalog.Product{
		ID:            id,
		Name:          name,
		SKU:           sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		InStock:       stock > 0,
		IsActive:      true,
	}
}
