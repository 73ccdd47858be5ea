package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/appdata"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"github.com/lunchorder/api/internal/events"
	"github.com/shopspring/decimal"
)

// OrderStore defines the store methods needed to place and change orders.
// Satisfied by *database.Queries and *database.MemoryStore.
type OrderStore interface {
	CreateOrder(ctx context.Context, o database.Order) (database.Order, error)
	UpdateOrder(ctx context.Context, o database.Order) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// PlaceOrderRequest is the validated input for placing or editing an order.
type PlaceOrderRequest struct {
	Date         time.Time
	ItemID       uuid.UUID
	VariantIndex *int
	AddonIndexes []int
	Remarks      string
	// For is the beneficiary's name. Empty means the orderer.
	For string
}

// PricedItem is a menu item with the chosen options resolved.
type PricedItem struct {
	Name   string
	Addons []string
	Price  decimal.Decimal
}

// OrderService handles order business logic.
type OrderService struct {
	state  *appdata.State
	store  OrderStore
	events events.Publisher
	cal    *Calendar
}

// NewOrderService creates a new OrderService.
func NewOrderService(state *appdata.State, store OrderStore, pub events.Publisher, cal *Calendar) *OrderService {
	return &OrderService{state: state, store: store, events: pub, cal: cal}
}

// PriceItem resolves the chosen variant and add-ons of item and computes the
// frozen order price: base + variant + add-ons.
func PriceItem(item database.MenuItem, variant *int, addons []int) (PricedItem, error) {
	out := PricedItem{Name: item.Name, Price: item.Price}

	if len(item.Variants) > 0 {
		if variant == nil {
			return PricedItem{}, ErrVariantRequired
		}
		if *variant < 0 || *variant >= len(item.Variants) {
			return PricedItem{}, ErrInvalidVariant
		}
		v := item.Variants[*variant]
		out.Name = item.Name + " " + v.Name
		out.Price = out.Price.Add(v.Price)
	} else if variant != nil {
		return PricedItem{}, ErrInvalidVariant
	}

	seen := make(map[int]bool, len(addons))
	for _, idx := range addons {
		if idx < 0 || idx >= len(item.Addons) {
			return PricedItem{}, ErrInvalidAddon
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
	}
	// Add-ons are listed in menu order regardless of selection order.
	for idx, a := range item.Addons {
		if seen[idx] {
			out.Addons = append(out.Addons, a.Name)
			out.Price = out.Price.Add(a.Price)
		}
	}
	return out, nil
}

// ResolveBeneficiary decides who an order is for and who pays for it.
// A name matching an account makes that account both user and payer;
// any other name is recorded as typed and billed to the orderer.
func (s *OrderService) ResolveBeneficiary(orderer auth.Principal, name string) (user, payer string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return orderer.Name, orderer.Name
	}
	if u, ok := s.state.UserByName(name); ok {
		return u.Name, u.Name
	}
	return name, orderer.Name
}

// Place validates, prices and stores a new order, then applies it to the
// in-memory state.
func (s *OrderService) Place(ctx context.Context, p auth.Principal, req PlaceOrderRequest) (database.Order, error) {
	day, ok := s.state.DailyConfig(req.Date)
	if !ok {
		return database.Order{}, ErrNoSchedule
	}
	if err := s.cal.CheckWindow(p, req.Date, &day); err != nil {
		return database.Order{}, err
	}

	item, vendor, priced, err := s.resolveItem(day, req)
	if err != nil {
		return database.Order{}, err
	}

	user, payer := s.ResolveBeneficiary(p, req.For)
	order := database.Order{
		ID:        uuid.New(),
		Date:      req.Date,
		User:      user,
		Payer:     payer,
		Vendor:    vendor.Name,
		SubVendor: item.SubVendor,
		Item:      priced.Name,
		Addons:    priced.Addons,
		Remarks:   strings.TrimSpace(req.Remarks),
		Price:     priced.Price,
		Status:    enum.OrderStatusUnpaid,
		CreatedBy: p.Name,
	}

	created, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return database.Order{}, fmt.Errorf("create order: %w", err)
	}
	s.state.PutOrder(created)
	s.publish(ctx, events.OrderCreated, created)
	return created, nil
}

// Edit re-prices an existing order and overwrites who it is for. The order
// keeps its id, date and status.
func (s *OrderService) Edit(ctx context.Context, p auth.Principal, id uuid.UUID, req PlaceOrderRequest) (database.Order, error) {
	existing, err := s.editable(p, id)
	if err != nil {
		return database.Order{}, err
	}

	day, ok := s.state.DailyConfig(existing.Date)
	if !ok {
		return database.Order{}, ErrNoSchedule
	}
	if err := s.cal.CheckWindow(p, existing.Date, &day); err != nil {
		return database.Order{}, err
	}

	req.Date = existing.Date
	item, _, priced, err := s.resolveItem(day, req)
	if err != nil {
		return database.Order{}, err
	}

	user, payer := s.ResolveBeneficiary(p, req.For)
	updated := existing
	updated.User = user
	updated.Payer = payer
	updated.SubVendor = item.SubVendor
	updated.Item = priced.Name
	updated.Addons = priced.Addons
	updated.Remarks = strings.TrimSpace(req.Remarks)
	updated.Price = priced.Price

	saved, err := s.store.UpdateOrder(ctx, updated)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("update order: %w", err)
	}
	s.state.PutOrder(saved)
	s.publish(ctx, events.OrderUpdated, saved)
	return saved, nil
}

// Delete removes an order outright. The same ownership and window rules as
// Edit apply.
func (s *OrderService) Delete(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	existing, err := s.editable(p, id)
	if err != nil {
		return err
	}
	if day, ok := s.state.DailyConfig(existing.Date); ok {
		if err := s.cal.CheckWindow(p, existing.Date, &day); err != nil {
			return err
		}
	}

	if err := s.store.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.state.RemoveOrder(id)
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}
	s.state.RemoveOrder(id)
	s.publish(ctx, events.OrderDeleted, existing)
	return nil
}

// Get returns a single order if p may see it.
func (s *OrderService) Get(p auth.Principal, id uuid.UUID) (database.Order, error) {
	o, ok := s.state.Order(id)
	if !ok {
		return database.Order{}, ErrOrderNotFound
	}
	if !p.Role.Privileged() && !involves(o, p.Name) {
		return database.Order{}, ErrOrderNotFound
	}
	return o, nil
}

// editable loads an order and checks that p may change it. Admins may change
// any order; others only unpaid orders they placed or are named on.
func (s *OrderService) editable(p auth.Principal, id uuid.UUID) (database.Order, error) {
	o, ok := s.state.Order(id)
	if !ok {
		return database.Order{}, ErrOrderNotFound
	}
	if p.Role.IsAdmin() {
		return o, nil
	}
	if !involves(o, p.Name) && !strings.EqualFold(o.CreatedBy, p.Name) {
		return database.Order{}, ErrForbidden
	}
	if o.Status.OrDefault() != enum.OrderStatusUnpaid {
		return database.Order{}, ErrOrderLocked
	}
	return o, nil
}

func (s *OrderService) resolveItem(day database.DailyConfig, req PlaceOrderRequest) (database.MenuItem, database.Vendor, PricedItem, error) {
	item, ok := s.state.MenuItem(req.ItemID)
	if !ok {
		return database.MenuItem{}, database.Vendor{}, PricedItem{}, ErrItemNotFound
	}
	if item.VendorID != day.VendorID {
		return database.MenuItem{}, database.Vendor{}, PricedItem{}, ErrItemNotOnMenu
	}
	if !item.IsActive {
		return database.MenuItem{}, database.Vendor{}, PricedItem{}, ErrItemInactive
	}
	vendor, ok := s.state.Vendor(item.VendorID)
	if !ok {
		return database.MenuItem{}, database.Vendor{}, PricedItem{}, ErrVendorNotFound
	}
	priced, err := PriceItem(item, req.VariantIndex, req.AddonIndexes)
	if err != nil {
		return database.MenuItem{}, database.Vendor{}, PricedItem{}, err
	}
	return item, vendor, priced, nil
}

func (s *OrderService) publish(ctx context.Context, typ string, o database.Order) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, events.Event{Type: typ, Date: FormatDate(o.Date), Payload: events.NewOrderView(o)})
}

// --- Day view ---

// DayView is what the ordering page shows for one date.
type DayView struct {
	Date            time.Time
	Vendor          *database.Vendor
	Cutoff          *time.Time
	Status          enum.DayStatus
	Open            bool
	SecondsToCutoff int64
	Menu            []database.MenuItem
}

// Day builds the ordering view for date as seen by p. A date with no
// schedule is returned closed with an empty menu.
func (s *OrderService) Day(p auth.Principal, date time.Time) DayView {
	view := DayView{Date: date, Status: enum.DayStatusPending}

	day, ok := s.state.DailyConfig(date)
	if !ok {
		return view
	}
	view.Status = day.Status.OrDefault()
	view.Cutoff = day.Cutoff
	if v, ok := s.state.Vendor(day.VendorID); ok {
		view.Vendor = &v
	}

	snap := s.state.Snapshot()
	for _, m := range snap.Menu {
		if m.VendorID == day.VendorID && m.IsActive {
			view.Menu = append(view.Menu, m)
		}
	}

	view.Open = view.Vendor != nil && s.cal.CheckWindow(p, date, &day) == nil
	if day.Cutoff != nil {
		if left := day.Cutoff.Sub(s.cal.Now()); left > 0 {
			view.SecondsToCutoff = int64(left / time.Second)
		}
	}
	return view
}

// involves reports whether name is the order's user or payer.
func involves(o database.Order, name string) bool {
	return strings.EqualFold(o.User, name) || strings.EqualFold(o.Payer, name)
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	return slices.Contains(ids, id)
}
