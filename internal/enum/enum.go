package enum

import "fmt"

// ── State machines (CHECK constrained in DB) ──

// OrderStatus is the payment lifecycle of a single order.
type OrderStatus string

const (
	OrderStatusUnpaid    OrderStatus = "Unpaid"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusUnpaid, OrderStatusPaid, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// OrDefault treats an unset status as Unpaid.
func (s OrderStatus) OrDefault() OrderStatus {
	if s == "" {
		return OrderStatusUnpaid
	}
	return s
}

// Terminal reports whether no further transition is offered from s.
func (s OrderStatus) Terminal() bool {
	switch s.OrDefault() {
	case OrderStatusCompleted, OrderStatusCancelled:
		return true
	case OrderStatusUnpaid, OrderStatusPaid:
		return false
	}
	return false
}

// CanTransition reports whether the normal flow allows from -> to.
// Admin overrides (SetOrderStatus) do not consult this.
func CanTransition(from, to OrderStatus) bool {
	switch from.OrDefault() {
	case OrderStatusUnpaid:
		return to == OrderStatusPaid || to == OrderStatusCancelled
	case OrderStatusPaid:
		return to == OrderStatusCompleted || to == OrderStatusCancelled
	case OrderStatusCompleted, OrderStatusCancelled:
		return false
	}
	return false
}

// ParseOrderStatus converts a wire value into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid order status %q", s)
	}
	return st, nil
}

// DayStatus tracks how far a day's group order has progressed with the vendor.
type DayStatus string

const (
	DayStatusPending   DayStatus = "Pending"
	DayStatusOrdered   DayStatus = "Ordered"
	DayStatusCompleted DayStatus = "Completed"
)

func (s DayStatus) Valid() bool {
	switch s {
	case DayStatusPending, DayStatusOrdered, DayStatusCompleted:
		return true
	}
	return false
}

// OrDefault treats an unset status as Pending.
func (s DayStatus) OrDefault() DayStatus {
	if s == "" {
		return DayStatusPending
	}
	return s
}

func ParseDayStatus(s string) (DayStatus, error) {
	st := DayStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid day status %q", s)
	}
	return st, nil
}

// ── Roles ──

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleCollector Role = "collector"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleCollector:
		return true
	}
	return false
}

// Privileged roles see every order and run the collection workflow.
func (r Role) Privileged() bool {
	switch r {
	case RoleAdmin, RoleCollector:
		return true
	case RoleUser:
		return false
	}
	return false
}

// IsAdmin reports whether r bypasses the ordering window checks.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

// ── History sorting ──

type SortField string

const (
	SortByDate       SortField = "date"
	SortByPrice      SortField = "price"
	SortByUser       SortField = "user"
	SortByPayer      SortField = "payer"
	SortByItem       SortField = "item"
	SortByStatus     SortField = "status"
	SortByPaymentRef SortField = "paymentRef"
)

func (f SortField) Valid() bool {
	switch f {
	case SortByDate, SortByPrice, SortByUser, SortByPayer, SortByItem, SortByStatus, SortByPaymentRef:
		return true
	}
	return false
}

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

func (d SortDir) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// BoardSortField orders the rows of a day's order board.
type BoardSortField string

const (
	BoardSortCategory BoardSortField = "category"
	BoardSortItem     BoardSortField = "item"
	BoardSortUser     BoardSortField = "user"
	BoardSortPrice    BoardSortField = "price"
)

func (f BoardSortField) Valid() bool {
	switch f {
	case BoardSortCategory, BoardSortItem, BoardSortUser, BoardSortPrice:
		return true
	}
	return false
}
