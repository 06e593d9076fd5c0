package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/acme/go-gin-storefront/internal/domains/catalog/domain"
	catalogports "github.com/acme/go-gin-storefront/internal/domains/catalog/ports"
	inventorydomain "github.com/acme/go-gin-storefront/internal/domains/inventory/domain"
	inventoryports "github.com/acme/go-gin-storefront/internal/domains/inventory/ports"
	ordertypes "github.com/acme/go-gin-storefront/internal/domains/orders/application/types"
	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*catalogdomain.Product
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]*catalogdomain.Product{}}
}

func (f *fakeCatalog) Save(_ context.Context, product *catalogdomain.Product) (*catalogdomain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *product
	f.products[product.Name] = &clone
	saved := clone
	return &saved, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id int64) (*catalogdomain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			clone := *p
			return &clone, nil
		}
	}
	return nil, catalogports.ErrNotFound
}

func (f *fakeCatalog) FindByName(_ context.Context, name string) (*catalogdomain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[name]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, catalogports.ErrNotFound
}

func (f *fakeCatalog) ListPrices(_ context.Context, req pagination.Request) (pagination.Page[catalogdomain.ProductPrice], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prices := make([]catalogdomain.ProductPrice, 0, len(f.products))
	for _, p := range f.products {
		prices = append(prices, catalogdomain.ProductPrice{Name: p.Name, Price: p.Price})
	}
	return pagination.NewPage(prices, req, int64(len(prices))), nil
}

func (f *fakeCatalog) setPrice(name, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[name].Price = decimal.RequireFromString(price)
}

type fakeLedger struct {
	mu       sync.Mutex
	capacity map[int64]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{capacity: map[int64]int{}}
}

func (f *fakeLedger) Reserve(_ context.Context, productID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	capacity, ok := f.capacity[productID]
	if !ok {
		return inventoryports.ErrNotFound
	}
	if capacity-quantity < 0 {
		return inventoryports.ErrInsufficientStock
	}
	f.capacity[productID] = capacity - quantity
	return nil
}

func (f *fakeLedger) Release(_ context.Context, productID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.capacity[productID]; !ok {
		return inventoryports.ErrNotFound
	}
	f.capacity[productID] += quantity
	return nil
}

func (f *fakeLedger) GetByProduct(_ context.Context, productID int64) (*inventorydomain.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	capacity, ok := f.capacity[productID]
	if !ok {
		return nil, inventoryports.ErrNotFound
	}
	return &inventorydomain.Inventory{ProductID: productID, Capacity: capacity}, nil
}

func (f *fakeLedger) Save(_ context.Context, inventory *inventorydomain.Inventory) (*inventorydomain.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capacity[inventory.ProductID] = inventory.Capacity
	clone := *inventory
	return &clone, nil
}

func (f *fakeLedger) List(_ context.Context, req pagination.Request) (pagination.Page[inventorydomain.Inventory], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]inventorydomain.Inventory, 0, len(f.capacity))
	for id, capacity := range f.capacity {
		items = append(items, inventorydomain.Inventory{ProductID: id, Capacity: capacity})
	}
	return pagination.NewPage(items, req, int64(len(items))), nil
}

func (f *fakeLedger) capacityOf(productID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.capacity[productID]
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[int64]*domain.Order
	nextID  int64
	saveErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int64]*domain.Order{}}
}

func (f *fakeOrderRepo) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	clone := *order
	if clone.ID == 0 {
		f.nextID++
		clone.ID = f.nextID
	}
	stored := clone
	f.orders[clone.ID] = &stored
	return &clone, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrderRepo) FindByOwner(_ context.Context, owner string) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*domain.Order
	for _, order := range f.orders {
		if order.Owner == owner {
			clone := *order
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (f *fakeOrderRepo) List(_ context.Context, _ string, req pagination.Request) (pagination.Page[*domain.Order], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []*domain.Order
	for _, order := range f.orders {
		clone := *order
		list = append(list, &clone)
	}
	return pagination.NewPage(list, req, int64(len(list))), nil
}

func (f *fakeOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakeInvalidator struct {
	mu    sync.Mutex
	calls [][]string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, views ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, views)
}

func (f *fakeInvalidator) lastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeInvalidator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixture struct {
	catalog     *fakeCatalog
	ledger      *fakeLedger
	repo        *fakeOrderRepo
	invalidator *fakeInvalidator
	svc         *Service
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog:     newFakeCatalog(),
		ledger:      newFakeLedger(),
		repo:        newFakeOrderRepo(),
		invalidator: &fakeInvalidator{},
		now:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	var sequence int64
	f.svc = NewService(f.catalog, f.ledger, f.repo, f.invalidator,
		WithClock(func() time.Time { return f.now }),
		WithNumberSource(func() string {
			sequence++
			return fmt.Sprintf("ord-%d", sequence)
		}),
	)
	return f
}

func (f *fixture) seedProduct(t *testing.T, id int64, name, price string, capacity int) {
	t.Helper()
	product, err := catalogdomain.NewProduct(id, name, decimal.RequireFromString(price))
	require.NoError(t, err)
	_, err = f.catalog.Save(context.Background(), product)
	require.NoError(t, err)
	inv, err := inventorydomain.NewInventory(id, capacity)
	require.NoError(t, err)
	_, err = f.ledger.Save(context.Background(), inv)
	require.NoError(t, err)
}

func placeInput(product string, quantity int) ordertypes.PlaceOrderInput {
	return ordertypes.PlaceOrderInput{
		Owner:       "alice",
		ProductName: product,
		Quantity:    quantity,
		Address:     "1 Main St",
	}
}

func TestPlaceOrder_ReservesAndPersists(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	order, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 2))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("20.00")), "total = %s", order.Total)
	assert.Equal(t, f.now, order.PlacedAt)
	assert.Equal(t, "ord-1", order.Number)
	assert.Equal(t, 3, f.ledger.capacityOf(1))
	assert.Equal(t, []string{ports.ViewUserOrders, ports.ViewInventoryList, ports.ViewAdminOrders}, f.invalidator.lastCall())
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), placeInput("ghost", 1))
	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Zero(t, f.repo.count())
	assert.Zero(t, f.invalidator.callCount())
}

func TestPlaceOrder_MissingInventoryRecordIsNotShortage(t *testing.T) {
	f := newFixture(t)
	product, err := catalogdomain.NewProduct(1, "mug", decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	_, err = f.catalog.Save(context.Background(), product)
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(context.Background(), placeInput("mug", 1))
	require.ErrorIs(t, err, ErrInventoryNotFound)
	require.NotErrorIs(t, err, ErrInsufficientInventory)
	assert.Zero(t, f.repo.count())
}

func TestPlaceOrder_InsufficientInventory(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 2)

	_, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 3))
	require.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Contains(t, err.Error(), "mug")

	assert.Equal(t, 2, f.ledger.capacityOf(1), "capacity must be unchanged")
	assert.Zero(t, f.repo.count(), "no order may be created")
	assert.Zero(t, f.invalidator.callCount())
}

func TestPlaceOrder_RejectsInvalidInputBeforeReserving(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	_, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 0))
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 5, f.ledger.capacityOf(1))

	input := placeInput("mug", 1)
	input.Owner = ""
	_, err = f.svc.PlaceOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 5, f.ledger.capacityOf(1))
}

func TestPlaceOrder_PersistFailureRollsBackReservation(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)
	storageErr := errors.New("connection reset")
	f.repo.saveErr = storageErr

	_, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 2))
	require.ErrorIs(t, err, storageErr)

	assert.Equal(t, 5, f.ledger.capacityOf(1), "reservation must be rolled back")
	assert.Zero(t, f.invalidator.callCount(), "no invalidation before commit")
}

func TestPlaceOrder_ConcurrentCallersNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 3))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, shortages int
	for err := range results {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, ErrInsufficientInventory)
			shortages++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, shortages)
	assert.Equal(t, 2, f.ledger.capacityOf(1))
	assert.Equal(t, 1, f.repo.count())
}

func TestPlaceOrder_TotalIsAPriceSnapshot(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	order, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 2))
	require.NoError(t, err)

	f.catalog.setPrice("mug", "99.99")

	views, err := f.svc.ListForOwner(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Total.Equal(decimal.RequireFromString("20.00")), "total = %s", views[0].Total)

	stored, err := f.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("20.00")))
}

func TestCancelOrder_RestocksExactQuantity(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	order, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 2))
	require.NoError(t, err)
	require.Equal(t, 3, f.ledger.capacityOf(1))

	cancelled, err := f.svc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, 5, f.ledger.capacityOf(1), "capacity must increase by the order quantity")
	assert.True(t, cancelled.Total.Equal(decimal.RequireFromString("20.00")), "total stays frozen")
	assert.Equal(t, []string{ports.ViewUserOrders, ports.ViewAdminOrders, ports.ViewInventoryList}, f.invalidator.lastCall())

	stored, err := f.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status, "order is retained, not deleted")
}

func TestCancelOrder_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CancelOrder(context.Background(), 404)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelOrder_DoubleCancellationIsRejected(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	order, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 2))
	require.NoError(t, err)
	_, err = f.svc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, 5, f.ledger.capacityOf(1))

	_, err = f.svc.CancelOrder(context.Background(), order.ID)
	require.ErrorIs(t, err, ErrOrderAlreadyCancelled)
	assert.Equal(t, 5, f.ledger.capacityOf(1), "a second cancel must not restock again")
}

func TestCancelOrder_PersistFailureRollsBackRestock(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	order, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 2))
	require.NoError(t, err)
	require.Equal(t, 3, f.ledger.capacityOf(1))

	storageErr := errors.New("connection reset")
	f.repo.saveErr = storageErr

	_, err = f.svc.CancelOrder(context.Background(), order.ID)
	require.ErrorIs(t, err, storageErr)
	assert.Equal(t, 3, f.ledger.capacityOf(1), "restock must be rolled back")

	f.repo.saveErr = nil
	stored, err := f.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestUpdateStatus_PersistsKnownStatus(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	order, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 2))
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), ordertypes.UpdateStatusInput{OrderID: order.ID, Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, updated.Status)
	assert.Equal(t, []string{ports.ViewUserOrders, ports.ViewAdminOrders}, f.invalidator.lastCall())
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	order, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 2))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), ordertypes.UpdateStatusInput{OrderID: order.ID, Status: "TELEPORTED"})
	require.ErrorIs(t, err, ErrInvalidStatus)

	stored, err := f.repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestUpdateStatus_NeverTouchesInventory(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	order, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 2))
	require.NoError(t, err)
	require.Equal(t, 3, f.ledger.capacityOf(1))

	// Setting CANCELLED through the admin path must not restock.
	updated, err := f.svc.UpdateStatus(context.Background(), ordertypes.UpdateStatusInput{OrderID: order.ID, Status: "CANCELLED"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Equal(t, 3, f.ledger.capacityOf(1), "admin status override must not restock")
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), ordertypes.UpdateStatusInput{OrderID: 404, Status: "SHIPPED"})
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListForAdmin_ProjectsUnitPriceSnapshot(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)

	_, err := f.svc.PlaceOrder(context.Background(), placeInput("mug", 2))
	require.NoError(t, err)
	f.catalog.setPrice("mug", "42.00")

	page, err := f.svc.ListForAdmin(context.Background(), "", pagination.Request{Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	view := page.Items[0]
	assert.Equal(t, "alice", view.Owner)
	assert.True(t, view.Price.Equal(decimal.RequireFromString("10.00")), "price = %s", view.Price)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("20.00")))
}

func TestListPrices_DelegatesToCatalog(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 1, "mug", "10.00", 5)
	f.seedProduct(t, 2, "plate", "4.50", 3)

	page, err := f.svc.ListPrices(context.Background(), pagination.Request{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalItems)
}
