package ports

import (
	"context"
	"errors"

	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

var ErrNotFound = errors.New("order not found")

// Repository is the durable order store. It carries no business rules;
// lifecycle transitions happen in the application service before Save.
type Repository interface {
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByOwner(ctx context.Context, owner string) ([]*domain.Order, error)
	// List returns a page of all orders; a non-empty ownerFilter narrows to
	// owners whose name contains the filter, case-insensitively.
	List(ctx context.Context, ownerFilter string, req pagination.Request) (pagination.Page[*domain.Order], error)
}
