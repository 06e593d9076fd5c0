package ports

import (
	"context"
	"errors"

	"github.com/acme/go-gin-storefront/internal/domains/inventory/domain"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

var (
	// ErrNotFound indicates no inventory record exists for the product.
	ErrNotFound = errors.New("inventory record not found")
	// ErrInsufficientStock is the expected business outcome when a
	// reservation would push capacity below zero. It is distinct from
	// ErrNotFound so callers can tell shortage from a missing record.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Ledger is the per-product capacity counter with atomic reserve/release.
// Implementations must serialize the read-modify-write per product against
// all concurrent reserve/release calls on the same product.
type Ledger interface {
	// Reserve atomically checks and decrements capacity. It fails with
	// ErrInsufficientStock leaving capacity unchanged, or ErrNotFound when
	// no record exists for the product.
	Reserve(ctx context.Context, productID int64, quantity int) error
	// Release atomically adds the quantity back to capacity.
	Release(ctx context.Context, productID int64, quantity int) error
	GetByProduct(ctx context.Context, productID int64) (*domain.Inventory, error)
	Save(ctx context.Context, inventory *domain.Inventory) (*domain.Inventory, error)
	List(ctx context.Context, req pagination.Request) (pagination.Page[domain.Inventory], error)
}
