package ports

import (
	"context"

	catalogdomain "github.com/acme/go-gin-storefront/internal/domains/catalog/domain"
	ordertypes "github.com/acme/go-gin-storefront/internal/domains/orders/application/types"
	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

// Service exposes the order workflow use cases to adapters (inbound port).
type Service interface {
	PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*domain.Order, error)
	ListPrices(ctx context.Context, req pagination.Request) (pagination.Page[catalogdomain.ProductPrice], error)
	ListForOwner(ctx context.Context, owner string) ([]ordertypes.UserOrderView, error)
	ListForAdmin(ctx context.Context, ownerFilter string, req pagination.Request) (pagination.Page[ordertypes.AdminOrderView], error)
}
