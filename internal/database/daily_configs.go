package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

const dailyConfigColumns = `date, vendor_id, cutoff, status`

func scanDailyConfig(row pgx.Row) (DailyConfig, error) {
	var c DailyConfig
	err := row.Scan(&c.Date, &c.VendorID, &c.Cutoff, &c.Status)
	return c, err
}

const listDailyConfigs = `SELECT ` + dailyConfigColumns + ` FROM daily_configs ORDER BY date DESC`

func (q *Queries) ListDailyConfigs(ctx context.Context) ([]DailyConfig, error) {
	rows, err := q.db.Query(ctx, listDailyConfigs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DailyConfig
	for rows.Next() {
		c, err := scanDailyConfig(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const upsertDailyConfig = `INSERT INTO daily_configs (date, vendor_id, cutoff, status)
VALUES ($1, $2, $3, $4)
ON CONFLICT (date) DO UPDATE SET vendor_id = EXCLUDED.vendor_id, cutoff = EXCLUDED.cutoff, status = EXCLUDED.status
RETURNING ` + dailyConfigColumns

func (q *Queries) UpsertDailyConfig(ctx context.Context, c DailyConfig) (DailyConfig, error) {
	saved, err := scanDailyConfig(q.db.QueryRow(ctx, upsertDailyConfig, c.Date, c.VendorID, c.Cutoff, c.Status))
	return saved, mapErr(err)
}

const deleteDailyConfig = `DELETE FROM daily_configs WHERE date = $1`

func (q *Queries) DeleteDailyConfig(ctx context.Context, date time.Time) error {
	return notFoundIfNone(q.db.Exec(ctx, deleteDailyConfig, date))
}
