package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Attendance mirrors the 'attendance' table.  One row per user per calendar
// date, created by the first check-in and finalized by check-out.  The table
// carries UNIQUE(user_id, date): two concurrent check-ins for the same day
// race at the store, and the constraint makes the second insert lose with a
// duplicate-key error instead of producing two rows.
type Attendance struct {
	ID       uint64  `json:"id"`
	UserID   uint64  `json:"userId"`
	Date     string  `json:"date"`     // YYYY-MM-DD
	CheckIn  string  `json:"check_in"` // HH:MM:SS
	CheckOut *string `json:"check_out"`
	UserName string  `json:"user_name,omitempty"`
}

// Attendance transition errors.  Each marks a rejected state transition,
// not a server failure; all of them wrap ErrConflict so errors.Is can treat
// the family uniformly.
var (
	ErrAlreadyCheckedIn  = fmt.Errorf("already checked-in: %w", ErrConflict)
	ErrNoCheckIn         = fmt.Errorf("no check-in found: %w", ErrConflict)
	ErrAlreadyCheckedOut = fmt.Errorf("already checked-out: %w", ErrConflict)
)

type AttendanceRepo struct{ DB *sql.DB }

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{DB: db} }

// CheckIn records the Absent -> CheckedIn transition for (userID, date).
// The insert itself is the existence check: a duplicate key means the user
// already checked in today and maps to ErrAlreadyCheckedIn.
func (r *AttendanceRepo) CheckIn(ctx context.Context, userID uint64, date, checkIn string) (Attendance, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO attendance (user_id, date, check_in) VALUES (?,?,?)",
		userID, date, checkIn)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return Attendance{}, ErrAlreadyCheckedIn
		}
		return Attendance{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Attendance{}, err
	}
	return r.getByID(ctx, uint64(id))
}

// CheckOut records the CheckedIn -> CheckedOut transition.  The update only
// touches open rows; when nothing matches, the current row (or its absence)
// tells which transition rule was violated.
func (r *AttendanceRepo) CheckOut(ctx context.Context, userID uint64, date, checkOut string) (Attendance, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE attendance SET check_out=? WHERE user_id=? AND date=? AND check_out IS NULL",
		checkOut, userID, date)
	if err != nil {
		return Attendance{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Attendance{}, err
	}
	if n == 0 {
		var out sql.NullString
		err := r.DB.QueryRowContext(ctx,
			"SELECT check_out FROM attendance WHERE user_id=? AND date=? LIMIT 1",
			userID, date).Scan(&out)
		if err == sql.ErrNoRows {
			return Attendance{}, ErrNoCheckIn
		}
		if err != nil {
			return Attendance{}, err
		}
		return Attendance{}, ErrAlreadyCheckedOut
	}
	var a Attendance
	err = scanAttendance(r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, date, check_in, check_out FROM attendance WHERE user_id=? AND date=? LIMIT 1",
		userID, date), &a)
	return a, err
}

func (r *AttendanceRepo) getByID(ctx context.Context, id uint64) (Attendance, error) {
	var a Attendance
	err := scanAttendance(r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, date, check_in, check_out FROM attendance WHERE id=? LIMIT 1", id), &a)
	if err == sql.ErrNoRows {
		return Attendance{}, ErrNotFound
	}
	return a, err
}

// scanAttendance normalizes the DATE and nullable TIME columns into the
// wire representation used everywhere else.
func scanAttendance(row interface{ Scan(...any) error }, a *Attendance) error {
	var date time.Time
	var out sql.NullString
	if err := row.Scan(&a.ID, &a.UserID, &date, &a.CheckIn, &out); err != nil {
		return err
	}
	a.Date = date.Format("2006-01-02")
	if out.Valid {
		v := out.String
		a.CheckOut = &v
	}
	return nil
}

// ListByUser returns one user's attendance history, newest date first.
func (r *AttendanceRepo) ListByUser(ctx context.Context, userID uint64) ([]Attendance, error) {
	return r.list(ctx,
		"SELECT id, user_id, date, check_in, check_out FROM attendance WHERE user_id=? ORDER BY date DESC",
		userID)
}

// ListByUserAndDate returns the records for one user on one date.
func (r *AttendanceRepo) ListByUserAndDate(ctx context.Context, userID uint64, date string) ([]Attendance, error) {
	return r.list(ctx,
		"SELECT id, user_id, date, check_in, check_out FROM attendance WHERE user_id=? AND date=? ORDER BY id",
		userID, date)
}

func (r *AttendanceRepo) list(ctx context.Context, query string, args ...any) ([]Attendance, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Attendance, 0)
	for rows.Next() {
		var a Attendance
		if err := scanAttendance(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListAll returns every attendance record with the user name joined in,
// newest date first.
func (r *AttendanceRepo) ListAll(ctx context.Context) ([]Attendance, error) {
	return r.listJoined(ctx,
		`SELECT a.id, a.user_id, a.date, a.check_in, a.check_out, u.name
		   FROM attendance a JOIN users u ON u.id = a.user_id
		  ORDER BY a.date DESC, a.id DESC`)
}

// ListByOffice returns attendance for every user of one office, newest
// date first.
func (r *AttendanceRepo) ListByOffice(ctx context.Context, officeID uint64) ([]Attendance, error) {
	return r.listJoined(ctx,
		`SELECT a.id, a.user_id, a.date, a.check_in, a.check_out, u.name
		   FROM attendance a JOIN users u ON u.id = a.user_id
		  WHERE u.office_id=? ORDER BY a.date DESC, a.id DESC`, officeID)
}

func (r *AttendanceRepo) listJoined(ctx context.Context, query string, args ...any) ([]Attendance, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Attendance, 0)
	for rows.Next() {
		var a Attendance
		var date time.Time
		var co sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &date, &a.CheckIn, &co, &a.UserName); err != nil {
			return nil, err
		}
		a.Date = date.Format("2006-01-02")
		if co.Valid {
			v := co.String
			a.CheckOut = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
