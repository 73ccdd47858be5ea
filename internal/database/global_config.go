package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const getGlobalConfig = `SELECT announcement, no_service_banners, payment FROM global_config WHERE id = 1`

func (q *Queries) GetGlobalConfig(ctx context.Context) (GlobalConfig, error) {
	var c GlobalConfig
	err := q.db.QueryRow(ctx, getGlobalConfig).Scan(&c.Announcement, &c.NoServiceBanners, &c.Payment)
	if errors.Is(err, pgx.ErrNoRows) {
		return GlobalConfig{}, nil
	}
	return c, err
}

const saveGlobalConfig = `INSERT INTO global_config (id, announcement, no_service_banners, payment)
VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
	announcement = EXCLUDED.announcement,
	no_service_banners = EXCLUDED.no_service_banners,
	payment = EXCLUDED.payment
RETURNING announcement, no_service_banners, payment`

func (q *Queries) SaveGlobalConfig(ctx context.Context, c GlobalConfig) (GlobalConfig, error) {
	var saved GlobalConfig
	err := q.db.QueryRow(ctx, saveGlobalConfig, c.Announcement, nonNil(c.NoServiceBanners), c.Payment).
		Scan(&saved.Announcement, &saved.NoServiceBanners, &saved.Payment)
	return saved, mapErr(err)
}

// FetchAll loads every table. With a pool it reads inside one repeatable-read
// transaction so the snapshot is consistent.
func (q *Queries) FetchAll(ctx context.Context) (Snapshot, error) {
	src := q
	if q.pool != nil {
		tx, err := q.pool.Begin(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx) //nolint:errcheck
		if _, err := tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY"); err != nil {
			return Snapshot{}, fmt.Errorf("set isolation: %w", err)
		}
		src = q.WithTx(tx)
	}

	var (
		snap Snapshot
		err  error
	)
	if snap.Vendors, err = src.ListVendors(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list vendors: %w", err)
	}
	if snap.Menu, err = src.ListMenuItems(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list menu items: %w", err)
	}
	if snap.Orders, err = src.ListOrders(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list orders: %w", err)
	}
	if snap.DailyConfigs, err = src.ListDailyConfigs(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list daily configs: %w", err)
	}
	if snap.Users, err = src.ListUsers(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("list users: %w", err)
	}
	if snap.Config, err = src.GetGlobalConfig(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("get global config: %w", err)
	}
	return snap, nil
}
