// Package types holds the use-case inputs and read projections exposed by
// the orders bounded context.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceOrderInput carries the placement request. Owner is the
// already-authenticated caller identity resolved by the transport layer.
type PlaceOrderInput struct {
	Owner       string
	ProductName string
	Quantity    int
	Address     string
}

// UpdateStatusInput carries an administrator status override.
type UpdateStatusInput struct {
	OrderID int64
	Status  string
}

// UserOrderView is the projection served to the order's owner.
type UserOrderView struct {
	OrderID     int64           `json:"orderId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Address     string          `json:"address"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	PlacedAt    time.Time       `json:"placedAt"`
}

// AdminOrderView is the projection served to administrators; Price is the
// unit price snapshot taken at placement.
type AdminOrderView struct {
	OrderID     int64           `json:"orderId"`
	Owner       string          `json:"owner"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Address     string          `json:"address"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	PlacedAt    time.Time       `json:"placedAt"`
}
