package ports

import (
	"context"

	ordertypes "github.com/acme/go-gin-storefront/internal/domains/orders/application/types"
	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
)

// PlacementOrchestrator runs the placement use case either durably
// (Temporal) or inline against the application service.
type PlacementOrchestrator interface {
	PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error)
}
