package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	catalogdomain "github.com/acme/go-gin-storefront/internal/domains/catalog/domain"
	catalogports "github.com/acme/go-gin-storefront/internal/domains/catalog/ports"
	inventoryports "github.com/acme/go-gin-storefront/internal/domains/inventory/ports"
	ordertypes "github.com/acme/go-gin-storefront/internal/domains/orders/application/types"
	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

// Service orchestrates the order workflow: placement with inventory
// reservation, cancellation with restock, administrator status overrides,
// and the read projections.
type Service struct {
	catalog     catalogports.Repository
	ledger      inventoryports.Ledger
	repo        ports.Repository
	invalidator ports.ViewInvalidator
	now         func() time.Time
	newNumber   func() string
}

// Option customizes the service, mostly for deterministic tests.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNumberSource overrides the order number generator.
func WithNumberSource(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newNumber = next
		}
	}
}

// NewService wires the order workflow with its collaborators. The
// invalidator may be nil when no read views are cached.
func NewService(catalog catalogports.Repository, ledger inventoryports.Ledger, repo ports.Repository, invalidator ports.ViewInvalidator, opts ...Option) *Service {
	s := &Service{
		catalog:     catalog,
		ledger:      ledger,
		repo:        repo,
		invalidator: invalidator,
		now:         time.Now,
		newNumber:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder reserves inventory and persists a new PENDING order. The
// reservation is sequenced strictly before the order write: a failed
// reservation never leaves an orphan order, and a persist failure rolls the
// reservation back so capacity reads unchanged.
func (s *Service) PlaceOrder(ctx context.Context, input ordertypes.PlaceOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(input.Owner) == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrEmptyOwner)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ErrInvalidQuantity)
	}

	product, err := s.catalog.FindByName(ctx, input.ProductName)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, input.ProductName)
		}
		return nil, err
	}

	if err := s.ledger.Reserve(ctx, product.ID, input.Quantity); err != nil {
		switch {
		case errors.Is(err, inventoryports.ErrInsufficientStock):
			return nil, fmt.Errorf("%w: not enough stock for product: %s", ErrInsufficientInventory, product.Name)
		case errors.Is(err, inventoryports.ErrNotFound):
			return nil, fmt.Errorf("%w: %s", ErrInventoryNotFound, product.Name)
		}
		return nil, err
	}

	order, err := domain.NewOrder(domain.NewOrderParams{
		Number:      s.newNumber(),
		Owner:       input.Owner,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    input.Quantity,
		UnitPrice:   product.Price,
		Address:     input.Address,
		PlacedAt:    s.now(),
	})
	if err != nil {
		err = mapError(err)
		return nil, s.rollbackReservation(ctx, product.ID, input.Quantity, err)
	}

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, s.rollbackReservation(ctx, product.ID, input.Quantity, err)
	}

	s.invalidate(ctx, ports.ViewUserOrders, ports.ViewInventoryList, ports.ViewAdminOrders)
	return saved, nil
}

// CancelOrder moves the order into CANCELLED and restocks its quantity.
// Cancelling an already-cancelled order is rejected so the same quantity is
// never released twice.
func (s *Service) CancelOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
		}
		return nil, err
	}
	if err := order.Cancel(); err != nil {
		return nil, mapError(err)
	}

	if err := s.ledger.Release(ctx, order.ProductID, order.Quantity); err != nil {
		if errors.Is(err, inventoryports.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInventoryNotFound, order.ProductName)
		}
		return nil, err
	}

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		// Undo the restock so the release and the order write stay linked.
		if reserveErr := s.ledger.Reserve(ctx, order.ProductID, order.Quantity); reserveErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to roll back restock: %w", reserveErr))
		}
		return nil, err
	}

	s.invalidate(ctx, ports.ViewUserOrders, ports.ViewAdminOrders, ports.ViewInventoryList)
	return saved, nil
}

// UpdateStatus applies an administrator status override. It never touches
// inventory, even when the target status is CANCELLED; only CancelOrder
// restocks. That asymmetry is part of the existing contract.
func (s *Service) UpdateStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, input.OrderID)
		}
		return nil, err
	}
	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, input.Status)
	}
	if err := order.SetStatus(status); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ports.ViewUserOrders, ports.ViewAdminOrders)
	return saved, nil
}

// ListPrices serves the catalog name/price listing.
func (s *Service) ListPrices(ctx context.Context, req pagination.Request) (pagination.Page[catalogdomain.ProductPrice], error) {
	return s.catalog.ListPrices(ctx, req)
}

// ListForOwner returns the caller's orders.
func (s *Service) ListForOwner(ctx context.Context, owner string) ([]ordertypes.UserOrderView, error) {
	orders, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	views := make([]ordertypes.UserOrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, ordertypes.UserOrderView{
			OrderID:     order.ID,
			ProductName: order.ProductName,
			Quantity:    order.Quantity,
			Address:     order.Address,
			Total:       order.Total,
			Status:      string(order.Status),
			PlacedAt:    order.PlacedAt,
		})
	}
	return views, nil
}

// ListForAdmin returns a page of all orders, optionally narrowed by an
// owner-name substring filter.
func (s *Service) ListForAdmin(ctx context.Context, ownerFilter string, req pagination.Request) (pagination.Page[ordertypes.AdminOrderView], error) {
	page, err := s.repo.List(ctx, ownerFilter, req)
	if err != nil {
		return pagination.Page[ordertypes.AdminOrderView]{}, err
	}
	return pagination.Map(page, func(order *domain.Order) ordertypes.AdminOrderView {
		return ordertypes.AdminOrderView{
			OrderID:     order.ID,
			Owner:       order.Owner,
			ProductName: order.ProductName,
			Price:       order.UnitPrice,
			Quantity:    order.Quantity,
			Address:     order.Address,
			Total:       order.Total,
			Status:      string(order.Status),
			PlacedAt:    order.PlacedAt,
		}
	}), nil
}

func (s *Service) rollbackReservation(ctx context.Context, productID int64, quantity int, cause error) error {
	if releaseErr := s.ledger.Release(ctx, productID, quantity); releaseErr != nil {
		return errors.Join(cause, fmt.Errorf("failed to roll back reservation: %w", releaseErr))
	}
	return cause
}

func (s *Service) invalidate(ctx context.Context, views ...string) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.Invalidate(ctx, views...)
}

var _ ports.Service = (*Service)(nil)
