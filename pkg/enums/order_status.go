package enums

import "fmt"

// OrderStatus tracks the lifecycle of a repair order.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "new"
	OrderStatusInProgress      OrderStatus = "in_progress"
	OrderStatusWaitingForParts OrderStatus = "waiting_for_parts"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusInvoiced        OrderStatus = "invoiced"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusInProgress,
	OrderStatusWaitingForParts,
	OrderStatusCompleted,
	OrderStatusInvoiced,
}

// ActiveOrderStatuses are the statuses of an order still in the shop.
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusInProgress,
	OrderStatusWaitingForParts,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the status counts as an active order.
func (s OrderStatus) IsActive() bool {
	for _, candidate := range ActiveOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status writes are accepted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusInvoiced
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
