package ports

import (
	"context"
	"errors"

	"github.com/acme/go-gin-storefront/internal/domains/catalog/domain"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

var ErrNotFound = errors.New("product not found")

// Repository persists catalog products and exposes the price listing view.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	ListPrices(ctx context.Context, req pagination.Request) (pagination.Page[domain.ProductPrice], error)
}
