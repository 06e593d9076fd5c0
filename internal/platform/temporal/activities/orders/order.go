package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/acme/go-gin-storefront/internal/domains/orders/application"
	ordertypes "github.com/acme/go-gin-storefront/internal/domains/orders/application/types"
	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
)

// PlaceOrderActivityName reserves stock and persists an order aggregate.
const PlaceOrderActivityName = "orders.activities.PlaceOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder runs the placement use case. Business rejections are flagged
// non-retryable so the retry policy only replays transient failures; the
// service's own compensation keeps the ledger consistent across attempts.
func (a *Activities) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("place order activity not initialized", "product", input.ProductName)
		return nil, errors.New("place order activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "owner", input.Owner, "product", input.ProductName, "quantity", input.Quantity)
	order, err := a.service.PlaceOrder(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "product", input.ProductName, "error", err)
		if isBusinessRejection(err) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "OrderPlacementRejected", err)
		}
		return nil, err
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID, "number", order.Number)
	return order, nil
}

func isBusinessRejection(err error) bool {
	return errors.Is(err, application.ErrProductNotFound) ||
		errors.Is(err, application.ErrInventoryNotFound) ||
		errors.Is(err, application.ErrInsufficientInventory) ||
		errors.Is(err, application.ErrInvalidInput)
}
