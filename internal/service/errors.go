package service

import "errors"

// Validation errors (400).
var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrVariantRequired    = errors.New("please select a variant")
	ErrInvalidVariant     = errors.New("variant does not belong to item")
	ErrInvalidAddon       = errors.New("add-on does not belong to item")
	ErrItemInactive       = errors.New("item is not available")
	ErrItemNotOnMenu      = errors.New("item is not on this day's menu")
	ErrNoSchedule         = errors.New("no vendor scheduled for this date")
	ErrNameRequired       = errors.New("name is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidPrice       = errors.New("price must be a non-negative number")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrInvalidDayStatus   = errors.New("invalid day status")
	ErrNoVendors          = errors.New("no vendors configured")
	ErrNoOrdersSelected   = errors.New("no orders selected")
)

// Authorization errors (403).
var (
	ErrForbidden     = errors.New("not allowed")
	ErrPastDate      = errors.New("cannot order for a past date")
	ErrCutoffPassed  = errors.New("ordering for this date is closed")
	ErrOrderLocked   = errors.New("only unpaid orders can be changed")
	ErrProtectedUser = errors.New("the main Admin account cannot be deleted")
)

// Lookup errors (404).
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrItemNotFound     = errors.New("menu item not found")
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrScheduleNotFound = errors.New("schedule not found")
)

// Conflict errors (409).
var (
	ErrNameTaken   = errors.New("name is already taken")
	ErrVendorInUse = errors.New("vendor is scheduled on one or more dates")
)
