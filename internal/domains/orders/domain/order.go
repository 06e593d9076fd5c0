package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates order progression. PENDING is the only entry state and
// CANCELLED is terminal; the remaining values are administrator-assigned.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var (
	ErrEmptyOwner       = errors.New("order owner is required")
	ErrEmptyProduct     = errors.New("order product reference is required")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrNegativePrice    = errors.New("unit price must not be negative")
	ErrInvalidStatus    = errors.New("order status is invalid")
	ErrAlreadyCancelled = errors.New("order is already cancelled")
)

// ParseStatus resolves an administrator-supplied status value.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !isValidStatus(status) {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// Order models a placed purchase order. Total is a snapshot of
// price x quantity taken at placement time and never recomputed.
type Order struct {
	ID            int64
	Number        string
	Owner         string
	ProductID     int64
	ProductName   string
	Quantity      int
	UnitPrice     decimal.Decimal
	Total         decimal.Decimal
	Address       string
	Status        Status
	StatusHistory []Status
	PlacedAt      time.Time
}

// NewOrderParams carries the placement-time inputs for a new order.
type NewOrderParams struct {
	Number      string
	Owner       string
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Address     string
	PlacedAt    time.Time
}

// NewOrder validates and constructs a PENDING order. An order can never be
// created directly into CANCELLED or any other state.
func NewOrder(params NewOrderParams) (*Order, error) {
	if strings.TrimSpace(params.Owner) == "" {
		return nil, ErrEmptyOwner
	}
	if params.ProductID <= 0 || strings.TrimSpace(params.ProductName) == "" {
		return nil, ErrEmptyProduct
	}
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if params.UnitPrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	order := &Order{
		Number:        params.Number,
		Owner:         params.Owner,
		ProductID:     params.ProductID,
		ProductName:   params.ProductName,
		Quantity:      params.Quantity,
		UnitPrice:     params.UnitPrice,
		Total:         params.UnitPrice.Mul(decimal.NewFromInt(int64(params.Quantity))),
		Address:       params.Address,
		Status:        StatusPending,
		StatusHistory: []Status{StatusPending},
		PlacedAt:      params.PlacedAt,
	}
	return order, nil
}

// SetStatus overwrites the status with a known value and records the
// transition. It enforces no transition rules beyond membership; the
// asymmetry that a CANCELLED set through here never restocks inventory is
// part of the workflow contract, not the aggregate's concern.
func (o *Order) SetStatus(status Status) error {
	if !isValidStatus(status) {
		return ErrInvalidStatus
	}
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, status)
	return nil
}

// Cancel moves the order into its terminal state. Cancelling twice is
// rejected so the caller cannot restock the same quantity again.
func (o *Order) Cancel() error {
	if o.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	return o.SetStatus(StatusCancelled)
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.Owner) == "" {
		return ErrEmptyOwner
	}
	if o.ProductID <= 0 || strings.TrimSpace(o.ProductName) == "" {
		return ErrEmptyProduct
	}
	if o.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}
