// Package mapper converts between the orders transport payloads and the
// application types.
package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	ordertypes "github.com/acme/go-gin-storefront/internal/domains/orders/application/types"
	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
)

// PlaceOrderRequest is the transport-layer shape of a placement request. The
// owner comes from the authenticated caller, never from the body.
type PlaceOrderRequest struct {
	ProductName string `json:"productName" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	Address     string `json:"address"`
}

// UpdateStatusRequest is the transport-layer shape of an admin status override.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderResponse is the transport-layer shape of a full order aggregate.
type OrderResponse struct {
	ID          int64           `json:"id"`
	Number      string          `json:"number"`
	Owner       string          `json:"owner"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
	Address     string          `json:"address"`
	Status      string          `json:"status"`
	PlacedAt    time.Time       `json:"placedAt"`
}

// ToPlaceOrderInput builds the use-case input from the payload and the
// resolved caller identity.
func ToPlaceOrderInput(owner string, payload PlaceOrderRequest) ordertypes.PlaceOrderInput {
	return ordertypes.PlaceOrderInput{
		Owner:       owner,
		ProductName: payload.ProductName,
		Quantity:    payload.Quantity,
		Address:     payload.Address,
	}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) OrderResponse {
	if order == nil {
		return OrderResponse{}
	}
	return OrderResponse{
		ID:          order.ID,
		Number:      order.Number,
		Owner:       order.Owner,
		ProductName: order.ProductName,
		Quantity:    order.Quantity,
		UnitPrice:   order.UnitPrice,
		Total:       order.Total,
		Address:     order.Address,
		Status:      string(order.Status),
		PlacedAt:    order.PlacedAt,
	}
}
