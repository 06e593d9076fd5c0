package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/acme/go-gin-storefront/internal/domains/inventory/domain"
	"github.com/acme/go-gin-storefront/internal/domains/inventory/ports"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger is the in-process inventory adapter. Each product gets its own
// mutex so reservations for different products never contend with each
// other, while the read-check-write on one product stays serialized.
type Ledger struct {
	mu      sync.RWMutex
	records map[int64]*entry
}

type entry struct {
	mu  sync.Mutex
	inv domain.Inventory
}

func NewLedger() *Ledger {
	return &Ledger{records: map[int64]*entry{}}
}

func (l *Ledger) Reserve(_ context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	rec, err := l.lookup(productID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !rec.inv.CanReserve(quantity) {
		return ports.ErrInsufficientStock
	}
	return rec.inv.Reserve(quantity)
}

func (l *Ledger) Release(_ context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	rec, err := l.lookup(productID)
	if err != nil {
		return err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.inv.Release(quantity)
}

func (l *Ledger) GetByProduct(_ context.Context, productID int64) (*domain.Inventory, error) {
	rec, err := l.lookup(productID)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	clone := rec.inv
	return &clone, nil
}

func (l *Ledger) Save(_ context.Context, inventory *domain.Inventory) (*domain.Inventory, error) {
	if inventory == nil {
		return nil, errors.New("inventory is nil")
	}
	clone := *inventory
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[clone.ProductID]
	if !ok {
		rec = &entry{}
		l.records[clone.ProductID] = rec
	}
	rec.mu.Lock()
	rec.inv = clone
	rec.mu.Unlock()
	saved := clone
	return &saved, nil
}

func (l *Ledger) List(_ context.Context, req pagination.Request) (pagination.Page[domain.Inventory], error) {
	l.mu.RLock()
	all := make([]domain.Inventory, 0, len(l.records))
	for _, rec := range l.records {
		rec.mu.Lock()
		all = append(all, rec.inv)
		rec.mu.Unlock()
	}
	l.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ProductID < all[j].ProductID })
	req = req.Normalize()
	total := int64(len(all))
	start := req.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	return pagination.NewPage(all[start:end], req, total), nil
}

func (l *Ledger) lookup(productID int64) (*entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[productID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return rec, nil
}
