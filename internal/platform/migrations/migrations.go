package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&inventoryRecord{},
		&orderRecord{},
	)
}

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	Name      string          `gorm:"column:name;type:varchar(255);uniqueIndex"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Inventory schema mirrors the ledger Postgres adapter.
type inventoryRecord struct {
	ProductID int64     `gorm:"primaryKey;column:product_id"`
	Capacity  int       `gorm:"column:capacity;check:capacity >= 0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (inventoryRecord) TableName() string { return "inventories" }

// Order schema mirrors the orders Postgres adapter.
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
