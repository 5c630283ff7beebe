package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/auradecor/storefront-backend/pkg/types"
)

// Product represents a catalog listing.
type Product struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string              `gorm:"column:name;not null"`
	Slug           string              `gorm:"column:slug;not null;uniqueIndex"`
	Description    *string             `gorm:"column:description"`
	Category       string              `gorm:"column:category;not null;index:products_category_idx"`
	Tags           pq.StringArray      `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	Images         types.ProductImages `gorm:"column:images;type:jsonb;serializer:json"`
	Price          decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`
	CompareAtPrice *decimal.Decimal    `gorm:"column:compare_at_price;type:numeric(10,2)"`
	StockQuantity  int                 `gorm:"column:stock_quantity;not null;default:0"`
	// No default tag: gorm skips a false zero value on insert when one is
	// set, and the column default would flip drafts active.
	IsActive   bool `gorm:"column:is_active;not null"`
	IsFeatured bool `gorm:"column:is_featured;not null;default:false"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
