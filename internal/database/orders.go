package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, date, user_name, payer, vendor, sub_vendor, item, addons, remarks,
	price, status, payment_ref, paid_at, created_by, created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.Date, &o.User, &o.Payer, &o.Vendor, &o.SubVendor, &o.Item, &o.Addons, &o.Remarks,
		&o.Price, &o.Status, &o.PaymentRef, &o.PaidAt, &o.CreatedBy, &o.CreatedAt,
	)
	return o, err
}

const listOrders = `SELECT ` + orderColumns + ` FROM orders ORDER BY date, created_at`

func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const createOrder = `INSERT INTO orders (
	id, date, user_name, payer, vendor, sub_vendor, item, addons, remarks,
	price, status, payment_ref, paid_at, created_by
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING ` + orderColumns

func (q *Queries) CreateOrder(ctx context.Context, o Order) (Order, error) {
	if o.Addons == nil {
		o.Addons = []string{}
	}
	row := q.db.QueryRow(ctx, createOrder,
		o.ID, o.Date, o.User, o.Payer, o.Vendor, o.SubVendor, o.Item, o.Addons, o.Remarks,
		o.Price, o.Status, o.PaymentRef, o.PaidAt, o.CreatedBy,
	)
	created, err := scanOrder(row)
	return created, mapErr(err)
}

const updateOrder = `UPDATE orders SET
	user_name = $2, payer = $3, sub_vendor = $4, item = $5, addons = $6, remarks = $7,
	price = $8, status = $9, payment_ref = $10, paid_at = $11
WHERE id = $1
RETURNING ` + orderColumns

// UpdateOrder overwrites the mutable fields. id, date, vendor and
// created_by are fixed at creation.
func (q *Queries) UpdateOrder(ctx context.Context, o Order) (Order, error) {
	if o.Addons == nil {
		o.Addons = []string{}
	}
	row := q.db.QueryRow(ctx, updateOrder,
		o.ID, o.User, o.Payer, o.SubVendor, o.Item, o.Addons, o.Remarks, o.Price,
		o.Status, o.PaymentRef, o.PaidAt,
	)
	updated, err := scanOrder(row)
	return updated, mapErr(err)
}

const deleteOrder = `DELETE FROM orders WHERE id = $1`

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return notFoundIfNone(q.db.Exec(ctx, deleteOrder, id))
}
