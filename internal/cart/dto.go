package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auradecor/storefront-backend/pkg/db/models"
)

// CartItemDTO is a hydrated cart line with the product fields the
// storefront renders next to it.
type CartItemDTO struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	PrimaryImage    *string         `json:"primary_image,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtAddition decimal.Decimal `json:"price_at_addition"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	LineTotal       decimal.Decimal `json:"line_total"`
	InStock         bool            `json:"in_stock"`
	AddedAt         time.Time       `json:"added_at"`
}

// CartDTO is the full cart payload with derived totals.
type CartDTO struct {
	ID        uuid.UUID       `json:"id"`
	Items     []CartItemDTO   `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GuestCartLine is one line of a locally held guest cart submitted for merge.
// The price snapshot travels with the line so a merged item keeps the price
// the guest saw when they added it.
type GuestCartLine struct {
	ProductID       uuid.UUID       `json:"product_id" validate:"required"`
	Quantity        int             `json:"quantity" validate:"required,gt=0"`
	PriceAtAddition decimal.Decimal `json:"price_at_addition" validate:"required"`
}

func itemDTO(item *models.CartItem) (CartItemDTO, bool) {
	if item.Product == nil {
		return CartItemDTO{}, false
	}
	product := item.Product
	var primary *string
	if len(product.Images) > 0 {
		url := product.Images[0].URL
		primary = &url
	}
	return CartItemDTO{
		ProductID:       item.ProductID,
		Name:            product.Name,
		Slug:            product.Slug,
		PrimaryImage:    primary,
		Quantity:        item.Quantity,
		PriceAtAddition: item.PriceAtAddition,
		CurrentPrice:    product.Price,
		LineTotal:       item.PriceAtAddition.Mul(decimal.NewFromInt(int64(item.Quantity))),
		InStock:         product.StockQuantity > 0,
		AddedAt:         item.CreatedAt,
	}, true
}

// FromModel hydrates the cart DTO from a cart with preloaded items and
// products. Lines whose product has been deleted are dropped from the view.
func FromModel(cart *models.Cart) *CartDTO {
	if cart == nil {
		return nil
	}
	items := make([]CartItemDTO, 0, len(cart.Items))
	count := 0
	subtotal := decimal.Zero
	for i := range cart.Items {
		dto, ok := itemDTO(&cart.Items[i])
		if !ok {
			continue
		}
		items = append(items, dto)
		count += dto.Quantity
		subtotal = subtotal.Add(dto.LineTotal)
	}
	return &CartDTO{
		ID:        cart.ID,
		Items:     items,
		ItemCount: count,
		Subtotal:  subtotal,
		UpdatedAt: cart.UpdatedAt,
	}
}
