// Package appdata holds the application's in-memory copy of the data store.
//
// State is loaded once at startup and refreshed on demand. Workflows read
// copies through Snapshot and the lookup helpers, write to the store first,
// and only then apply the stored record here, so the in-memory view never
// shows a change the store rejected.
package appdata

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lunchorder/api/internal/database"
)

// Loader fetches a full snapshot. Satisfied by database.Store.
type Loader interface {
	FetchAll(ctx context.Context) (database.Snapshot, error)
}

type State struct {
	loader Loader

	mu       sync.RWMutex
	snap     database.Snapshot
	loadedAt time.Time
}

func New(loader Loader) *State {
	return &State{loader: loader}
}

// Load performs the initial fetch. It is Refresh under another name so the
// startup call site reads naturally.
func (s *State) Load(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh replaces the in-memory snapshot with a fresh fetch from the store.
// On error the previous snapshot is kept.
func (s *State) Refresh(ctx context.Context) error {
	snap, err := s.loader.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch all: %w", err)
	}
	s.mu.Lock()
	s.snap = snap
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *State) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Snapshot returns a copy of the top-level collections. Nested slices
// (addons, banners) are shared and must be treated as read-only.
func (s *State) Snapshot() database.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return database.Snapshot{
		Vendors:      slices.Clone(s.snap.Vendors),
		Menu:         slices.Clone(s.snap.Menu),
		Orders:       slices.Clone(s.snap.Orders),
		DailyConfigs: slices.Clone(s.snap.DailyConfigs),
		Config:       s.snap.Config,
		Users:        slices.Clone(s.snap.Users),
	}
}

// --- Lookups ---

func (s *State) Order(id uuid.UUID) (database.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.snap.Orders, func(o database.Order) bool { return o.ID == id })
}

func (s *State) Vendor(id uuid.UUID) (database.Vendor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.snap.Vendors, func(v database.Vendor) bool { return v.ID == id })
}

func (s *State) MenuItem(id uuid.UUID) (database.MenuItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.snap.Menu, func(m database.MenuItem) bool { return m.ID == id })
}

func (s *State) DailyConfig(date time.Time) (database.DailyConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.snap.DailyConfigs, func(c database.DailyConfig) bool { return c.Date.Equal(date) })
}

func (s *State) User(id uuid.UUID) (database.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.snap.Users, func(u database.User) bool { return u.ID == id })
}

// UserByName matches case-insensitively, as login and beneficiary lookup do.
func (s *State) UserByName(name string) (database.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return find(s.snap.Users, func(u database.User) bool { return strings.EqualFold(u.Name, name) })
}

func (s *State) Config() database.GlobalConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Config
}

// --- Mutations (apply records already accepted by the store) ---

func (s *State) PutOrder(o database.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Orders = upsert(s.snap.Orders, o, func(x database.Order) bool { return x.ID == o.ID })
}

func (s *State) RemoveOrder(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Orders = slices.DeleteFunc(s.snap.Orders, func(x database.Order) bool { return x.ID == id })
}

func (s *State) PutVendor(v database.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Vendors = upsert(s.snap.Vendors, v, func(x database.Vendor) bool { return x.ID == v.ID })
}

// RemoveVendor drops the vendor and its menu, mirroring the store cascade.
func (s *State) RemoveVendor(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Vendors = slices.DeleteFunc(s.snap.Vendors, func(x database.Vendor) bool { return x.ID == id })
	s.snap.Menu = slices.DeleteFunc(s.snap.Menu, func(x database.MenuItem) bool { return x.VendorID == id })
}

func (s *State) PutMenuItem(m database.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Menu = upsert(s.snap.Menu, m, func(x database.MenuItem) bool { return x.ID == m.ID })
}

func (s *State) RemoveMenuItem(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Menu = slices.DeleteFunc(s.snap.Menu, func(x database.MenuItem) bool { return x.ID == id })
}

func (s *State) PutUser(u database.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Users = upsert(s.snap.Users, u, func(x database.User) bool { return x.ID == u.ID })
}

func (s *State) RemoveUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Users = slices.DeleteFunc(s.snap.Users, func(x database.User) bool { return x.ID == id })
}

func (s *State) PutDailyConfig(c database.DailyConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.DailyConfigs = upsert(s.snap.DailyConfigs, c, func(x database.DailyConfig) bool { return x.Date.Equal(c.Date) })
}

func (s *State) RemoveDailyConfig(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.DailyConfigs = slices.DeleteFunc(s.snap.DailyConfigs, func(x database.DailyConfig) bool { return x.Date.Equal(date) })
}

func (s *State) SetConfig(c database.GlobalConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Config = c
}

func find[T any](items []T, match func(T) bool) (T, bool) {
	if i := slices.IndexFunc(items, match); i >= 0 {
		return items[i], true
	}
	var zero T
	return zero, false
}

func upsert[T any](items []T, v T, match func(T) bool) []T {
	if i := slices.IndexFunc(items, match); i >= 0 {
		items[i] = v
		return items
	}
	return append(items, v)
}
