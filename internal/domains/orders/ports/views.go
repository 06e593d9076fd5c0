package ports

import "context"

// Cached read projections invalidated by state-changing operations.
const (
	ViewUserOrders    = "userOrders"
	ViewAdminOrders   = "adminOrders"
	ViewInventoryList = "inventoryList"
	ViewProductPrices = "productPrices"
)

// ViewInvalidator signals that cached projections are stale. Calls are
// fire-and-forget and issued only after the state change has committed.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, views ...string)
}
