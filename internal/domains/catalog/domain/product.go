package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName     = errors.New("product name is required")
	ErrNegativePrice = errors.New("product price must not be negative")
)

// Product is the catalog aggregate. The order core treats it as immutable;
// price changes never rewrite totals of already-placed orders.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// NewProduct validates the invariants and builds a new Product.
func NewProduct(id int64, name string, price decimal.Decimal) (*Product, error) {
	p := &Product{ID: id, Price: price}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename mutates the product name ensuring the invariant.
func (p *Product) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// Reprice replaces the listed price.
func (p *Product) Reprice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	p.Price = price
	return nil
}

// Validate enforces invariants on the aggregate.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// ProductPrice is the name/price projection served by price listings.
type ProductPrice struct {
	Name  string
	Price decimal.Decimal
}
