package views

import (
	"context"

	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
)

var _ ports.ViewInvalidator = (Multi)(nil)

// Multi fans an invalidation out to several invalidators, typically the
// in-process cache plus the Kafka publisher.
type Multi []ports.ViewInvalidator

func (m Multi) Invalidate(ctx context.Context, views ...string) {
	for _, invalidator := range m {
		if invalidator != nil {
			invalidator.Invalidate(ctx, views...)
		}
	}
}
