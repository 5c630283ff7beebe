package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusAwaitingPayment     OrderStatus = "awaiting_payment"
	OrderStatusAwaitingFulfillment OrderStatus = "awaiting_fulfillment"
	OrderStatusShipped             OrderStatus = "shipped"
	OrderStatusCompleted           OrderStatus = "completed"
	OrderStatusCancelled           OrderStatus = "cancelled"
	OrderStatusRefunded            OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAwaitingPayment,
	OrderStatusAwaitingFulfillment,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:             {OrderStatusAwaitingPayment, OrderStatusCancelled},
	OrderStatusAwaitingPayment:     {OrderStatusAwaitingFulfillment, OrderStatusCancelled},
	OrderStatusAwaitingFulfillment: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:             {OrderStatusCompleted, OrderStatusRefunded},
	OrderStatusCompleted:           {OrderStatusRefunded},
	OrderStatusCancelled:           {},
	OrderStatusRefunded:            {},
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (o OrderStatus) IsTerminal() bool {
	next, ok := orderStatusTransitions[o]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the status may move to target.
func (o OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, candidate := range orderStatusTransitions[o] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
