package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// errRow is a row whose Scan always fails with the given error.
type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// TestAttendanceConflictSentinels verifies that every attendance conflict
// unwraps to ErrConflict, which is what the handlers branch on to pick the
// 400 response.
func TestAttendanceConflictSentinels(t *testing.T) {
	for _, err := range []error{ErrAlreadyCheckedIn, ErrNoCheckIn, ErrAlreadyCheckedOut} {
		assert.True(t, errors.Is(err, ErrConflict), "%v", err)
		assert.False(t, errors.Is(err, ErrNotFound), "%v", err)
	}
	assert.False(t, errors.Is(ErrConflict, ErrAlreadyCheckedIn))
}

// TestValidTaskStatus pins the accepted status vocabulary.
func TestValidTaskStatus(t *testing.T) {
	for _, s := range []string{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted} {
		assert.True(t, ValidTaskStatus(s), s)
	}
	for _, s := range []string{"", "done", "Pending", "in-progress", "archived"} {
		assert.False(t, ValidTaskStatus(s), s)
	}
}

// TestScanUserNotFound verifies that every user lookup reports an absent
// row as ErrNotFound, never as the driver's sql.ErrNoRows — the handlers
// branch on the sentinel alone.
func TestScanUserNotFound(t *testing.T) {
	var u User
	err := scanUser(errRow{err: sql.ErrNoRows}, &u)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, sql.ErrNoRows)

	other := errors.New("connection reset")
	assert.Equal(t, other, scanUser(errRow{err: other}, &u))
}

// TestProfileHidesHash verifies the view handed to clients carries no
// password material.
func TestProfileHidesHash(t *testing.T) {
	u := User{ID: 3, Name: "Ana", Email: "ana@b.com", PasswordHash: "$2a$x", Role: "employee", OfficeID: 1}
	p := u.Profile()
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, u.Email, p.Email)
	assert.Equal(t, u.Role, p.Role)
}
