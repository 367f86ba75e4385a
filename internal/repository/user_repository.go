package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// User mirrors the 'users' table.  PasswordHash never leaves the repository
// layer in a response: handlers serialize the Profile view instead.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	OfficeID     uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the client-visible view of a user, and the shape cached under
// user:<id>.
type Profile struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	OfficeID  uint64    `json:"officeId"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile strips the credential fields from a full user row.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		OfficeID:  u.OfficeID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userCols = "id, name, email, password_hash, role, office_id, created_at, updated_at"

// Create inserts a user and returns its ID.  The email must be unique; a
// duplicate maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, hash, role string, officeID uint64) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, office_id) VALUES (?,?,?,?,?)",
		name, email, hash, role, officeID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// scanUser reads one user row.  An empty result maps to ErrNotFound so
// every lookup shares the same sentinel regardless of the lookup column.
func scanUser(row interface{ Scan(...any) error }, u *User) error {
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.OfficeID, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

// GetByEmail fetches a user by normalized email, ErrNotFound when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email), &u)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// GetByID fetches a user by id or ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id), &u)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Update rewrites name and email.  A duplicate email maps to ErrEmailExists.
// Callers verify existence beforehand: RowsAffected cannot distinguish a
// missing row from unchanged values.
func (r *UserRepo) Update(ctx context.Context, id uint64, name, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=? WHERE id=?", name, email, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword stores a new bcrypt hash for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
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

// Delete removes a user or returns ErrNotFound.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
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

// ListByOffice returns the profiles of every user in one office.
func (r *UserRepo) ListByOffice(ctx context.Context, officeID uint64) ([]Profile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users WHERE office_id=? ORDER BY id", officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Profile, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.OfficeID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u.Profile())
	}
	return out, rows.Err()
}
