package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing one")
)

// Store is the data store accessor: a full fetch plus per-entity writes.
// Satisfied by *Queries (PostgreSQL) and *MemoryStore.
type Store interface {
	FetchAll(ctx context.Context) (Snapshot, error)

	CreateOrder(ctx context.Context, o Order) (Order, error)
	UpdateOrder(ctx context.Context, o Order) (Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	CreateVendor(ctx context.Context, v Vendor) (Vendor, error)
	UpdateVendor(ctx context.Context, v Vendor) (Vendor, error)
	DeleteVendor(ctx context.Context, id uuid.UUID) error

	CreateMenuItem(ctx context.Context, m MenuItem) (MenuItem, error)
	UpdateMenuItem(ctx context.Context, m MenuItem) (MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error

	CreateUser(ctx context.Context, u User) (User, error)
	UpdateUser(ctx context.Context, u User) (User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	UpsertDailyConfig(ctx context.Context, c DailyConfig) (DailyConfig, error)
	DeleteDailyConfig(ctx context.Context, date time.Time) error

	SaveGlobalConfig(ctx context.Context, c GlobalConfig) (GlobalConfig, error)
}
