package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/appdata"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"github.com/shopspring/decimal"
)

var utc8 = time.FixedZone("UTC+8", 8*3600)

// fixture is a small office: one vendor scheduled on orderDate with a
// Chicken Rice item, and three accounts.
type fixture struct {
	store  *database.MemoryStore
	state  *appdata.State
	cal    *Calendar
	vendor database.Vendor
	item   database.MenuItem
	plain  database.MenuItem
	date   time.Time
	now    time.Time
}

var (
	alice = auth.Principal{UserID: uuid.New(), Name: "Alice", Role: enum.RoleUser}
	bob   = auth.Principal{UserID: uuid.New(), Name: "Bob", Role: enum.RoleUser}
	admin = auth.Principal{UserID: uuid.New(), Name: "Admin", Role: enum.RoleAdmin}
	coll  = auth.Principal{UserID: uuid.New(), Name: "Cara", Role: enum.RoleCollector}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intp(i int) *int { return &i }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: database.NewMemoryStore(),
		date:  day(2026, 10, 19),
		now:   time.Date(2026, 10, 19, 9, 0, 0, 0, utc8),
	}
	f.vendor = database.Vendor{ID: uuid.New(), Name: "Kedai Ali", SubVendors: []string{"Rice"}}
	f.item = database.MenuItem{
		ID:        uuid.New(),
		VendorID:  f.vendor.ID,
		Name:      "Chicken Rice",
		Price:     dec("5.00"),
		SubVendor: "Rice",
		Variants:  []database.Option{{Name: "Regular", Price: dec("0")}, {Name: "Large", Price: dec("1.50")}},
		Addons:    []database.Option{{Name: "Egg", Price: dec("0.80")}, {Name: "Extra Rice", Price: dec("1.00")}},
		IsActive:  true,
	}
	f.plain = database.MenuItem{ID: uuid.New(), VendorID: f.vendor.ID, Name: "Teh Ais", Price: dec("2.00"), IsActive: true}
	cutoff := time.Date(2026, 10, 19, 11, 0, 0, 0, utc8)

	f.store.Seed(database.Snapshot{
		Vendors:      []database.Vendor{f.vendor},
		Menu:         []database.MenuItem{f.item, f.plain},
		DailyConfigs: []database.DailyConfig{{Date: f.date, VendorID: f.vendor.ID, Cutoff: &cutoff, Status: enum.DayStatusPending}},
		Users: []database.User{
			{ID: alice.UserID, Name: alice.Name, Role: alice.Role},
			{ID: bob.UserID, Name: bob.Name, Role: bob.Role},
			{ID: admin.UserID, Name: admin.Name, Role: admin.Role},
			{ID: coll.UserID, Name: coll.Name, Role: coll.Role},
		},
	})
	f.state = appdata.New(f.store)
	if err := f.state.Load(context.Background()); err != nil {
		t.Fatalf("load state: %v", err)
	}
	f.cal = NewCalendar(utc8, 13, 15).WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) orders(store OrderStore) *OrderService {
	if store == nil {
		store = f.store
	}
	return NewOrderService(f.state, store, nil, f.cal)
}

// seedOrder writes an order straight to the store and state.
func (f *fixture) seedOrder(t *testing.T, o database.Order) database.Order {
	t.Helper()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Date.IsZero() {
		o.Date = f.date
	}
	if o.Vendor == "" {
		o.Vendor = f.vendor.Name
	}
	created, err := f.store.CreateOrder(context.Background(), o)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	f.state.PutOrder(created)
	return created
}

// failingStore wraps a MemoryStore and fails updates for selected orders.
type failingStore struct {
	*database.MemoryStore
	failCreate bool
	failIDs    map[uuid.UUID]bool
}

var errStoreDown = errors.New("store unavailable")

func (s *failingStore) CreateOrder(ctx context.Context, o database.Order) (database.Order, error) {
	if s.failCreate {
		return database.Order{}, errStoreDown
	}
	return s.MemoryStore.CreateOrder(ctx, o)
}

func (s *failingStore) UpdateOrder(ctx context.Context, o database.Order) (database.Order, error) {
	if s.failIDs[o.ID] {
		return database.Order{}, errStoreDown
	}
	return s.MemoryStore.UpdateOrder(ctx, o)
}
