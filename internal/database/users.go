package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, hashed_password, role, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.HashedPassword, &u.Role, &u.CreatedAt)
	return u, err
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY lower(name)`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const getUserByName = `SELECT ` + userColumns + ` FROM users WHERE lower(name) = lower($1)`

// GetUserByName matches case-insensitively. Used when bootstrapping the
// main admin so reruns stay idempotent.
func (q *Queries) GetUserByName(ctx context.Context, name string) (User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, getUserByName, name))
	return u, mapErr(err)
}

const createUser = `INSERT INTO users (id, name, hashed_password, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

func (q *Queries) CreateUser(ctx context.Context, u User) (User, error) {
	created, err := scanUser(q.db.QueryRow(ctx, createUser, u.ID, u.Name, u.HashedPassword, u.Role))
	return created, mapErr(err)
}

const updateUser = `UPDATE users SET name = $2, hashed_password = $3, role = $4
WHERE id = $1
RETURNING ` + userColumns

func (q *Queries) UpdateUser(ctx context.Context, u User) (User, error) {
	updated, err := scanUser(q.db.QueryRow(ctx, updateUser, u.ID, u.Name, u.HashedPassword, u.Role))
	return updated, mapErr(err)
}

const deleteUser = `DELETE FROM users WHERE id = $1`

func (q *Queries) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return notFoundIfNone(q.db.Exec(ctx, deleteUser, id))
}
