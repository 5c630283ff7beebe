package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auradecor/storefront-backend/pkg/db/models"
	"github.com/auradecor/storefront-backend/pkg/enums"
	"github.com/auradecor/storefront-backend/pkg/types"
)

// OrderItemDTO is an immutable line snapshot on an order.
type OrderItemDTO struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderDTO is the full order payload.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	OrderNumber     int64             `json:"order_number"`
	Status          enums.OrderStatus `json:"status"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	ShippingFee     decimal.Decimal   `json:"shipping_fee"`
	Total           decimal.Decimal   `json:"total"`
	ShippingAddress *types.Address    `json:"shipping_address,omitempty"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	Items           []OrderItemDTO    `json:"items"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// OrderSummary is the reduced shape returned by list endpoints.
type OrderSummary struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	OrderNumber int64             `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
	Total       decimal.Decimal   `json:"total"`
	ItemCount   int               `json:"item_count"`
	CreatedAt   time.Time         `json:"created_at"`
}

// OrderListResult bundles a page of summaries with the continuation cursor.
type OrderListResult struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// FromModel maps a persisted order onto the transport DTO.
func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return &OrderDTO{
		ID:              order.ID,
		UserID:          order.UserID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		Subtotal:        order.Subtotal,
		ShippingFee:     order.ShippingFee,
		Total:           order.Total,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Items:           items,
		CancelledAt:     order.CancelledAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// SummaryFromModel maps an order row to its list shape. Items must be
// preloaded for the count to be meaningful.
func SummaryFromModel(order *models.Order) OrderSummary {
	count := 0
	for i := range order.Items {
		count += order.Items[i].Quantity
	}
	return OrderSummary{
		ID:          order.ID,
		UserID:      order.UserID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Total:       order.Total,
		ItemCount:   count,
		CreatedAt:   order.CreatedAt,
	}
}
