package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one product line inside a cart. The price is snapshotted when
// the product is added and refreshed whenever the same product is added again.
type CartItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID          uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:cart_items_cart_product_key"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:cart_items_cart_product_key"`
	Quantity        int             `gorm:"column:quantity;not null"`
	PriceAtAddition decimal.Decimal `gorm:"column:price_at_addition;type:numeric(10,2);not null"`
	Product         *Product        `gorm:"foreignKey:ProductID"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
