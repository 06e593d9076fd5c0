package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/acme/go-gin-storefront/internal/domains/catalog/domain"
	"github.com/acme/go-gin-storefront/internal/domains/catalog/ports"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog adapter for development and tests.
type Repository struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	byName   map[string]int64
	nextID   int64
}

func NewRepository() *Repository {
	return &Repository{
		products: map[int64]*domain.Product{},
		byName:   map[string]int64{},
	}
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := *product
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byName[clone.Name]; ok && existingID != clone.ID {
		return nil, errors.New("product name already in use")
	}
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	if previous, ok := r.products[clone.ID]; ok && previous.Name != clone.Name {
		delete(r.byName, previous.Name)
	}
	r.products[clone.ID] = &clone
	r.byName[clone.Name] = clone.ID
	saved := clone
	return &saved, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *Repository) FindByName(_ context.Context, name string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *r.products[id]
	return &clone, nil
}

func (r *Repository) ListPrices(_ context.Context, req pagination.Request) (pagination.Page[domain.ProductPrice], error) {
	r.mu.RLock()
	prices := make([]domain.ProductPrice, 0, len(r.products))
	for _, product := range r.products {
		prices = append(prices, domain.ProductPrice{Name: product.Name, Price: product.Price})
	}
	r.mu.RUnlock()

	sort.Slice(prices, func(i, j int) bool { return prices[i].Name < prices[j].Name })
	total := int64(len(prices))
	req = req.Normalize()
	start := req.Offset()
	if start > len(prices) {
		start = len(prices)
	}
	end := start + req.Size
	if end > len(prices) {
		end = len(prices)
	}
	return pagination.NewPage(prices[start:end], req, total), nil
}
