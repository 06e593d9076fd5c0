package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	orders map[int64]*domain.Order
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{orders: map[int64]*domain.Order{}}
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := cloneOrder(order)
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.orders[clone.ID] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) FindByOwner(_ context.Context, owner string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Order
	for _, order := range r.orders {
		if order.Owner == owner {
			list = append(list, cloneOrder(order))
		}
	}
	sortByPlacedAtDesc(list)
	return list, nil
}

func (r *Repository) List(_ context.Context, ownerFilter string, req pagination.Request) (pagination.Page[*domain.Order], error) {
	req = req.Normalize()
	filter := strings.ToLower(strings.TrimSpace(ownerFilter))
	r.mu.RLock()
	var matched []*domain.Order
	for _, order := range r.orders {
		if filter != "" && !strings.Contains(strings.ToLower(order.Owner), filter) {
			continue
		}
		matched = append(matched, cloneOrder(order))
	}
	r.mu.RUnlock()
	sortByPlacedAtDesc(matched)

	total := int64(len(matched))
	start := req.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + req.Size
	if end > len(matched) {
		end = len(matched)
	}
	return pagination.NewPage(matched[start:end], req, total), nil
}

func sortByPlacedAtDesc(orders []*domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].PlacedAt.Equal(orders[j].PlacedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].PlacedAt.After(orders[j].PlacedAt)
	})
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.StatusHistory = append([]domain.Status(nil), order.StatusHistory...)
	return &clone
}
