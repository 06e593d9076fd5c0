package domain

import "errors"

var (
	ErrInvalidProduct   = errors.New("inventory product reference is required")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrNegativeCapacity = errors.New("inventory capacity must not be negative")
)

// Inventory holds the reservable capacity for one product. Capacity never
// goes negative; mutations happen only through reserve/release.
type Inventory struct {
	ProductID int64
	Capacity  int
}

// NewInventory validates and constructs an inventory record.
func NewInventory(productID int64, capacity int) (*Inventory, error) {
	inv := &Inventory{ProductID: productID, Capacity: capacity}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

// Validate enforces invariants on the record.
func (i *Inventory) Validate() error {
	if i.ProductID <= 0 {
		return ErrInvalidProduct
	}
	if i.Capacity < 0 {
		return ErrNegativeCapacity
	}
	return nil
}

// CanReserve reports whether the requested quantity fits the capacity.
func (i *Inventory) CanReserve(quantity int) bool {
	return quantity > 0 && i.Capacity-quantity >= 0
}

// Reserve decrements capacity. Callers must hold the per-product lock and
// check CanReserve first; Reserve refuses to cross zero regardless.
func (i *Inventory) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.Capacity-quantity < 0 {
		return ErrNegativeCapacity
	}
	i.Capacity -= quantity
	return nil
}

// Release adds the quantity back. No upper bound is enforced.
func (i *Inventory) Release(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	i.Capacity += quantity
	return nil
}
