package database

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a Store kept entirely in process memory. It backs
// STORE_DRIVER=memory for local development and the handler tests.
// It enforces the same constraints as the SQL schema.
type MemoryStore struct {
	mu      sync.Mutex
	vendors []Vendor
	menu    []MenuItem
	orders  []Order
	days    []DailyConfig
	users   []User
	config  GlobalConfig
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Seed replaces the store contents; intended for tests and local demos.
func (m *MemoryStore) Seed(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vendors = slices.Clone(s.Vendors)
	m.menu = slices.Clone(s.Menu)
	m.orders = slices.Clone(s.Orders)
	m.days = slices.Clone(s.DailyConfigs)
	m.users = slices.Clone(s.Users)
	m.config = s.Config
}

func (m *MemoryStore) FetchAll(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	days := slices.Clone(m.days)
	slices.SortFunc(days, func(a, b DailyConfig) int { return b.Date.Compare(a.Date) })
	return Snapshot{
		Vendors:      slices.Clone(m.vendors),
		Menu:         slices.Clone(m.menu),
		Orders:       slices.Clone(m.orders),
		DailyConfigs: days,
		Config:       m.config,
		Users:        slices.Clone(m.users),
	}, nil
}

// --- Orders ---

func (m *MemoryStore) CreateOrder(_ context.Context, o Order) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.orders, func(x Order) bool { return x.ID == o.ID }) {
		return Order{}, ErrConflict
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = m.now()
	}
	m.orders = append(m.orders, o)
	return o, nil
}

func (m *MemoryStore) UpdateOrder(_ context.Context, o Order) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.orders, func(x Order) bool { return x.ID == o.ID })
	if i < 0 {
		return Order{}, ErrNotFound
	}
	cur := m.orders[i]
	cur.User, cur.Payer, cur.SubVendor, cur.Item = o.User, o.Payer, o.SubVendor, o.Item
	cur.Addons, cur.Remarks = o.Addons, o.Remarks
	cur.Price, cur.Status, cur.PaymentRef, cur.PaidAt = o.Price, o.Status, o.PaymentRef, o.PaidAt
	m.orders[i] = cur
	return cur, nil
}

func (m *MemoryStore) DeleteOrder(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.orders)
	m.orders = slices.DeleteFunc(m.orders, func(x Order) bool { return x.ID == id })
	if len(m.orders) == n {
		return ErrNotFound
	}
	return nil
}

// --- Vendors ---

func (m *MemoryStore) CreateVendor(_ context.Context, v Vendor) (Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = m.now()
	}
	m.vendors = append(m.vendors, v)
	return v, nil
}

func (m *MemoryStore) UpdateVendor(_ context.Context, v Vendor) (Vendor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.vendors, func(x Vendor) bool { return x.ID == v.ID })
	if i < 0 {
		return Vendor{}, ErrNotFound
	}
	v.CreatedAt = m.vendors[i].CreatedAt
	m.vendors[i] = v
	return v, nil
}

func (m *MemoryStore) DeleteVendor(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.days, func(c DailyConfig) bool { return c.VendorID == id }) {
		return ErrConflict
	}
	n := len(m.vendors)
	m.vendors = slices.DeleteFunc(m.vendors, func(x Vendor) bool { return x.ID == id })
	if len(m.vendors) == n {
		return ErrNotFound
	}
	m.menu = slices.DeleteFunc(m.menu, func(x MenuItem) bool { return x.VendorID == id })
	return nil
}

// --- Menu items ---

func (m *MemoryStore) CreateMenuItem(_ context.Context, item MenuItem) (MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.ContainsFunc(m.vendors, func(v Vendor) bool { return v.ID == item.VendorID }) {
		return MenuItem{}, ErrConflict
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = m.now()
	}
	m.menu = append(m.menu, item)
	return item, nil
}

func (m *MemoryStore) UpdateMenuItem(_ context.Context, item MenuItem) (MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.menu, func(x MenuItem) bool { return x.ID == item.ID })
	if i < 0 {
		return MenuItem{}, ErrNotFound
	}
	item.VendorID = m.menu[i].VendorID
	item.CreatedAt = m.menu[i].CreatedAt
	m.menu[i] = item
	return item, nil
}

func (m *MemoryStore) DeleteMenuItem(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.menu)
	m.menu = slices.DeleteFunc(m.menu, func(x MenuItem) bool { return x.ID == id })
	if len(m.menu) == n {
		return ErrNotFound
	}
	return nil
}

// --- Users ---

func (m *MemoryStore) GetUserByName(_ context.Context, name string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.users, func(x User) bool { return strings.EqualFold(x.Name, name) })
	if i < 0 {
		return User{}, ErrNotFound
	}
	return m.users[i], nil
}

func (m *MemoryStore) CreateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(u.Name, u.ID) {
		return User{}, ErrConflict
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.now()
	}
	m.users = append(m.users, u)
	return u, nil
}

func (m *MemoryStore) UpdateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.users, func(x User) bool { return x.ID == u.ID })
	if i < 0 {
		return User{}, ErrNotFound
	}
	if m.nameTaken(u.Name, u.ID) {
		return User{}, ErrConflict
	}
	u.CreatedAt = m.users[i].CreatedAt
	m.users[i] = u
	return u, nil
}

func (m *MemoryStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.users)
	m.users = slices.DeleteFunc(m.users, func(x User) bool { return x.ID == id })
	if len(m.users) == n {
		return ErrNotFound
	}
	return nil
}

func (m *MemoryStore) nameTaken(name string, except uuid.UUID) bool {
	return slices.ContainsFunc(m.users, func(x User) bool {
		return x.ID != except && strings.EqualFold(x.Name, name)
	})
}

// --- Daily configs ---

func (m *MemoryStore) UpsertDailyConfig(_ context.Context, c DailyConfig) (DailyConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.ContainsFunc(m.vendors, func(v Vendor) bool { return v.ID == c.VendorID }) {
		return DailyConfig{}, ErrConflict
	}
	i := slices.IndexFunc(m.days, func(x DailyConfig) bool { return x.Date.Equal(c.Date) })
	if i < 0 {
		m.days = append(m.days, c)
	} else {
		m.days[i] = c
	}
	return c, nil
}

func (m *MemoryStore) DeleteDailyConfig(_ context.Context, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.days)
	m.days = slices.DeleteFunc(m.days, func(x DailyConfig) bool { return x.Date.Equal(date) })
	if len(m.days) == n {
		return ErrNotFound
	}
	return nil
}

// --- Global config ---

func (m *MemoryStore) SaveGlobalConfig(_ context.Context, c GlobalConfig) (GlobalConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = c
	return c, nil
}
