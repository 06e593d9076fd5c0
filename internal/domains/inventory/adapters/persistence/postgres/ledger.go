package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acme/go-gin-storefront/internal/domains/inventory/domain"
	"github.com/acme/go-gin-storefront/internal/domains/inventory/ports"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger persists inventory capacity in PostgreSQL using GORM. Reserve and
// release run as single guarded UPDATE statements, so the check and the
// decrement are one atomic row operation; no explicit row lock is needed.
type Ledger struct {
	db *gorm.DB
}

// NewLedger wires a PostgreSQL-backed ledger. Caller manages DB lifecycle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// inventoryRecord maps the capacity counter to a relational table.
type inventoryRecord struct {
	ProductID int64     `gorm:"primaryKey;column:product_id"`
	Capacity  int       `gorm:"column:capacity;check:capacity >= 0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (inventoryRecord) TableName() string { return "inventories" }

// Reserve decrements capacity with a compare-and-swap guard. Zero affected
// rows means either the record is missing or the capacity check failed; the
// follow-up read tells the two apart.
func (l *Ledger) Reserve(ctx context.Context, productID int64, quantity int) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	result := l.db.WithContext(ctx).Model(&inventoryRecord{}).
		Where("product_id = ? AND capacity >= ?", productID, quantity).
		UpdateColumns(map[string]any{
			"capacity":   gorm.Expr("capacity - ?", quantity),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var record inventoryRecord
	if err := l.db.WithContext(ctx).First(&record, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ErrNotFound
		}
		return err
	}
	return ports.ErrInsufficientStock
}

// Release adds the quantity back to capacity.
func (l *Ledger) Release(ctx context.Context, productID int64, quantity int) error {
	if err := l.ensureDB(); err != nil {
		return err
	}
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	result := l.db.WithContext(ctx).Model(&inventoryRecord{}).
		Where("product_id = ?", productID).
		UpdateColumns(map[string]any{
			"capacity":   gorm.Expr("capacity + ?", quantity),
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// GetByProduct fetches the capacity record for a product.
func (l *Ledger) GetByProduct(ctx context.Context, productID int64) (*domain.Inventory, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var record inventoryRecord
	if err := l.db.WithContext(ctx).First(&record, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Save inserts or overwrites the capacity record for a product.
func (l *Ledger) Save(ctx context.Context, inventory *domain.Inventory) (*domain.Inventory, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	if inventory == nil {
		return nil, errors.New("inventory is nil")
	}
	if err := inventory.Validate(); err != nil {
		return nil, err
	}
	record := inventoryRecord{ProductID: inventory.ProductID, Capacity: inventory.Capacity}
	if err := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"capacity":   record.Capacity,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return l.GetByProduct(ctx, record.ProductID)
}

// List returns a page of inventory records ordered by product.
func (l *Ledger) List(ctx context.Context, req pagination.Request) (pagination.Page[domain.Inventory], error) {
	if err := l.ensureDB(); err != nil {
		return pagination.Page[domain.Inventory]{}, err
	}
	req = req.Normalize()
	var total int64
	if err := l.db.WithContext(ctx).Model(&inventoryRecord{}).Count(&total).Error; err != nil {
		return pagination.Page[domain.Inventory]{}, err
	}
	var records []inventoryRecord
	if err := l.db.WithContext(ctx).
		Order("product_id asc").
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&records).Error; err != nil {
		return pagination.Page[domain.Inventory]{}, err
	}
	items := make([]domain.Inventory, 0, len(records))
	for i := range records {
		items = append(items, *records[i].toDomain())
	}
	return pagination.NewPage(items, req, total), nil
}

func (l *Ledger) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres inventory ledger not configured")
	}
	return nil
}

func (r inventoryRecord) toDomain() *domain.Inventory {
	return &domain.Inventory{ProductID: r.ProductID, Capacity: r.Capacity}
}
