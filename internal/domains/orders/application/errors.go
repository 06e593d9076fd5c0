package application

import (
	"errors"
	"fmt"

	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
)

var (
	// ErrProductNotFound signals the requested product is not in the catalog.
	ErrProductNotFound = errors.New("product not found")
	// ErrInventoryNotFound signals the product exists but carries no inventory record.
	ErrInventoryNotFound = errors.New("inventory record not found")
	// ErrOrderNotFound signals the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInsufficientInventory is the expected business rejection when the
	// requested quantity exceeds the reservable capacity.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrInvalidStatus signals an unrecognized administrator status value.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrOrderAlreadyCancelled rejects a second cancellation of the same order.
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyOwner) ||
		errors.Is(err, domain.ErrEmptyProduct) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNegativePrice) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidStatus, err)
	}
	if errors.Is(err, domain.ErrAlreadyCancelled) {
		return fmt.Errorf("%w: %w", ErrOrderAlreadyCancelled, err)
	}
	return err
}
