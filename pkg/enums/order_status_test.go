package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusAwaitingPayment, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusAwaitingPayment, OrderStatusAwaitingFulfillment, true},
		{OrderStatusAwaitingFulfillment, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusCompleted, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusCompleted, OrderStatusRefunded, true},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusCompleted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusCancelled.IsTerminal() {
		t.Error("cancelled should be terminal")
	}
	if !OrderStatusRefunded.IsTerminal() {
		t.Error("refunded should be terminal")
	}
	if OrderStatusPending.IsTerminal() {
		t.Error("pending should not be terminal")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("awaiting_fulfillment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusAwaitingFulfillment {
		t.Fatalf("unexpected status %s", status)
	}
	if _, err := ParseOrderStatus("bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != UserRoleAdmin {
		t.Fatalf("unexpected role %s", role)
	}
	if _, err := ParseUserRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
