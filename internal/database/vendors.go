package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const vendorColumns = `id, name, description, banners, sub_vendors, created_at`

func scanVendor(row pgx.Row) (Vendor, error) {
	var v Vendor
	err := row.Scan(&v.ID, &v.Name, &v.Description, &v.Banners, &v.SubVendors, &v.CreatedAt)
	return v, err
}

const listVendors = `SELECT ` + vendorColumns + ` FROM vendors ORDER BY created_at, name`

func (q *Queries) ListVendors(ctx context.Context) ([]Vendor, error) {
	rows, err := q.db.Query(ctx, listVendors)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

const createVendor = `INSERT INTO vendors (id, name, description, banners, sub_vendors)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + vendorColumns

func (q *Queries) CreateVendor(ctx context.Context, v Vendor) (Vendor, error) {
	row := q.db.QueryRow(ctx, createVendor, v.ID, v.Name, v.Description, nonNil(v.Banners), nonNil(v.SubVendors))
	created, err := scanVendor(row)
	return created, mapErr(err)
}

const updateVendor = `UPDATE vendors SET name = $2, description = $3, banners = $4, sub_vendors = $5
WHERE id = $1
RETURNING ` + vendorColumns

func (q *Queries) UpdateVendor(ctx context.Context, v Vendor) (Vendor, error) {
	row := q.db.QueryRow(ctx, updateVendor, v.ID, v.Name, v.Description, nonNil(v.Banners), nonNil(v.SubVendors))
	updated, err := scanVendor(row)
	return updated, mapErr(err)
}

// Menu items go with the vendor (ON DELETE CASCADE). A vendor still
// referenced by a schedule is rejected with ErrConflict.
const deleteVendor = `DELETE FROM vendors WHERE id = $1`

func (q *Queries) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	return notFoundIfNone(q.db.Exec(ctx, deleteVendor, id))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
