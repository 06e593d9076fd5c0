package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acme/go-gin-storefront/internal/domains/orders/domain"
	"github.com/acme/go-gin-storefront/internal/domains/orders/ports"
	"github.com/acme/go-gin-storefront/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed order store. Caller manages DB
// lifecycle; schema is applied by platform migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// orderRecord maps the order aggregate to a relational table. StatusHistory
// is kept as a text[] column so the progression survives round trips without
// a join table.
type orderRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	Number        string          `gorm:"column:number;type:varchar(64);uniqueIndex"`
	Owner         string          `gorm:"column:owner;type:varchar(255);index"`
	ProductID     int64           `gorm:"column:product_id;index"`
	ProductName   string          `gorm:"column:product_name;type:varchar(255)"`
	Quantity      int             `gorm:"column:quantity"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(14,2)"`
	Address       string          `gorm:"column:address"`
	Status        string          `gorm:"column:status;type:varchar(32);index"`
	StatusHistory pq.StringArray  `gorm:"column:status_history;type:text[]"`
	PlacedAt      time.Time       `gorm:"column:placed_at;index"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Save inserts or updates an order.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	if record.ID == 0 {
		if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, err
		}
		return r.GetByID(ctx, record.ID)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":         record.Status,
				"status_history": record.StatusHistory,
				"address":        record.Address,
				"updated_at":     gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// FindByOwner returns every order placed by the given owner, newest first.
func (r *Repository) FindByOwner(ctx context.Context, owner string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("placed_at desc, id desc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// List returns a page of orders for the back office, optionally narrowed by a
// case-insensitive owner substring.
func (r *Repository) List(ctx context.Context, ownerFilter string, req pagination.Request) (pagination.Page[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return pagination.Page[*domain.Order]{}, err
	}
	req = req.Normalize()
	query := r.db.WithContext(ctx).Model(&orderRecord{})
	if filter := strings.TrimSpace(ownerFilter); filter != "" {
		query = query.Where("owner ILIKE ?", "%"+filter+"%")
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return pagination.Page[*domain.Order]{}, err
	}
	order := req.SortClause(map[string]string{
		"placedAt": "placed_at",
		"owner":    "owner",
		"status":   "status",
	}, "placed_at desc, id desc")
	var records []orderRecord
	if err := query.
		Order(order).
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&records).Error; err != nil {
		return pagination.Page[*domain.Order]{}, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return pagination.NewPage(orders, req, total), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	history := make(pq.StringArray, 0, len(order.StatusHistory))
	for _, status := range order.StatusHistory {
		history = append(history, string(status))
	}
	return orderRecord{
		ID:            order.ID,
		Number:        order.Number,
		Owner:         order.Owner,
		ProductID:     order.ProductID,
		ProductName:   order.ProductName,
		Quantity:      order.Quantity,
		UnitPrice:     order.UnitPrice,
		Total:         order.Total,
		Address:       order.Address,
		Status:        string(order.Status),
		StatusHistory: history,
		PlacedAt:      order.PlacedAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	history := make([]domain.Status, 0, len(r.StatusHistory))
	for _, status := range r.StatusHistory {
		history = append(history, domain.Status(status))
	}
	return &domain.Order{
		ID:            r.ID,
		Number:        r.Number,
		Owner:         r.Owner,
		ProductID:     r.ProductID,
		ProductName:   r.ProductName,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		Total:         r.Total,
		Address:       r.Address,
		Status:        domain.Status(r.Status),
		StatusHistory: history,
		PlacedAt:      r.PlacedAt,
	}
}
