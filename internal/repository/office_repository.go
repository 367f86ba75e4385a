package repository

import (
	"context"
	"database/sql"
	"time"
)

// Office mirrors the 'offices' table.  An office is the tenant unit of the
// system: users belong to one office and tasks and messages are scoped to it.
type Office struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OfficeRepo struct{ DB *sql.DB }

func NewOfficeRepo(db *sql.DB) *OfficeRepo { return &OfficeRepo{DB: db} }

// Create inserts an office and populates the generated ID and timestamps.
func (r *OfficeRepo) Create(ctx context.Context, o *Office) error {
	res, err := r.DB.ExecContext(ctx, "INSERT INTO offices (name) VALUES (?)", o.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM offices WHERE id=?", o.ID).
		Scan(&o.CreatedAt, &o.UpdatedAt)
}

// GetByID fetches a single office or ErrNotFound.
func (r *OfficeRepo) GetByID(ctx context.Context, id uint64) (Office, error) {
	var o Office
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM offices WHERE id=? LIMIT 1", id).
		Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return Office{}, ErrNotFound
	}
	return o, err
}

// List returns every office ordered by id.
func (r *OfficeRepo) List(ctx context.Context) ([]Office, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM offices ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Office, 0)
	for rows.Next() {
		var o Office
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateName renames an office.  Callers verify existence beforehand:
// RowsAffected cannot distinguish a missing row from an unchanged name.
func (r *OfficeRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE offices SET name=? WHERE id=?", name, id)
	return err
}

// Delete removes an office.  ErrNotFound when no row matched.
func (r *OfficeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM offices WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
