package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const menuItemColumns = `id, vendor_id, name, description, price, sub_vendor, addons, variants, is_active, created_at`

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID, &m.VendorID, &m.Name, &m.Description, &m.Price, &m.SubVendor,
		&m.Addons, &m.Variants, &m.IsActive, &m.CreatedAt,
	)
	return m, err
}

const listMenuItems = `SELECT ` + menuItemColumns + ` FROM menu_items ORDER BY vendor_id, sub_vendor, created_at`

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const createMenuItem = `INSERT INTO menu_items (id, vendor_id, name, description, price, sub_vendor, addons, variants, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + menuItemColumns

func (q *Queries) CreateMenuItem(ctx context.Context, m MenuItem) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		m.ID, m.VendorID, m.Name, m.Description, m.Price, m.SubVendor,
		nonNilOptions(m.Addons), nonNilOptions(m.Variants), m.IsActive,
	)
	created, err := scanMenuItem(row)
	return created, mapErr(err)
}

const updateMenuItem = `UPDATE menu_items SET
	name = $2, description = $3, price = $4, sub_vendor = $5, addons = $6, variants = $7, is_active = $8
WHERE id = $1
RETURNING ` + menuItemColumns

func (q *Queries) UpdateMenuItem(ctx context.Context, m MenuItem) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		m.ID, m.Name, m.Description, m.Price, m.SubVendor,
		nonNilOptions(m.Addons), nonNilOptions(m.Variants), m.IsActive,
	)
	updated, err := scanMenuItem(row)
	return updated, mapErr(err)
}

const deleteMenuItem = `DELETE FROM menu_items WHERE id = $1`

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	return notFoundIfNone(q.db.Exec(ctx, deleteMenuItem, id))
}

func nonNilOptions(o []Option) []Option {
	if o == nil {
		return []Option{}
	}
	return o
}
