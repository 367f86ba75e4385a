package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/office-operations/internal/queue"
	"github.com/iliyamo/office-operations/internal/realtime"
	"github.com/iliyamo/office-operations/internal/repository"
	"github.com/iliyamo/office-operations/internal/service"
)

// AttendanceHandler bundles dependencies for the attendance endpoints.
// Check-in and check-out drive the per-user-per-date state machine
// Absent -> CheckedIn -> CheckedOut; the repository rejects every other
// transition as a conflict.
type AttendanceHandler struct {
	Attendance *repository.AttendanceRepo
	Coord      *service.Coordinator
}

func NewAttendanceHandler(att *repository.AttendanceRepo, coord *service.Coordinator) *AttendanceHandler {
	return &AttendanceHandler{Attendance: att, Coord: coord}
}

// CheckIn handles POST /api/v1/attendance/check-in/:userId.  The first
// check-in of the day creates the record; a second attempt is a conflict,
// not a server error.
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid userId"})
	}
	now := time.Now().UTC()
	date := now.Format("2006-01-02")
	clock := now.Format("15:04:05")

	ctx, cancel := reqCtx(c)
	defer cancel()

	rec, err := h.Attendance.CheckIn(ctx, userID, date, clock)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Already checked-in today"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	h.Coord.After(nil, service.Event{
		Room:    realtime.UserRoom(userID),
		Name:    realtime.EventAttendanceCheckIn,
		Payload: rec,
	})
	h.audit(rec, "check-in", clock)
	return c.JSON(http.StatusCreated, rec)
}

// CheckOut handles POST /api/v1/attendance/check-out/:userId.  It requires
// an open check-in for today; repeating it, or checking out without a
// check-in, is a conflict.
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid userId"})
	}
	now := time.Now().UTC()
	date := now.Format("2006-01-02")
	clock := now.Format("15:04:05")

	ctx, cancel := reqCtx(c)
	defer cancel()

	rec, err := h.Attendance.CheckOut(ctx, userID, date, clock)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoCheckIn):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "No check-in found today"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Already checked-out"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}

	h.Coord.After(nil, service.Event{
		Room:    realtime.UserRoom(userID),
		Name:    realtime.EventAttendanceCheckOut,
		Payload: rec,
	})
	h.audit(rec, "check-out", clock)
	return c.JSON(http.StatusOK, rec)
}

// audit ships the committed transition to the broker for the attendance
// log.  Detached and best-effort, like every post-write side effect.
func (h *AttendanceHandler) audit(rec repository.Attendance, action, clock string) {
	ev := queue.AttendanceRecordedEvent{
		AttendanceID: rec.ID,
		UserID:       rec.UserID,
		Action:       action,
		Date:         rec.Date,
		Time:         clock,
		RecordedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = service.PublishAttendanceRecorded(ctx, ev)
	}()
}

// ByUser handles GET /api/v1/attendance/user/:userId.
func (h *AttendanceHandler) ByUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid userId"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	records, err := h.Attendance.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if len(records) == 0 {
		return c.JSON(http.StatusNotFound, records)
	}
	return c.JSON(http.StatusOK, records)
}

// ByUserAndDate handles GET /api/v1/attendance/user/:userId/by-date with
// the date in the body or the `date` query parameter (YYYY-MM-DD).
func (h *AttendanceHandler) ByUserAndDate(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid userId"})
	}
	var req struct {
		Date string `json:"date"`
	}
	_ = c.Bind(&req)
	if req.Date == "" {
		req.Date = c.QueryParam("date")
	}
	if req.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date is required"})
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "date must be YYYY-MM-DD"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	records, err := h.Attendance.ListByUserAndDate(ctx, userID, req.Date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if len(records) == 0 {
		return c.JSON(http.StatusNotFound, records)
	}
	return c.JSON(http.StatusOK, records)
}

// ByOffice handles GET /api/v1/attendance/office/:officeId.
func (h *AttendanceHandler) ByOffice(c echo.Context) error {
	officeID, err := pathID(c, "officeId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "officeId is required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	records, err := h.Attendance.ListByOffice(ctx, officeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if len(records) == 0 {
		return c.JSON(http.StatusNotFound, records)
	}
	return c.JSON(http.StatusOK, records)
}

// ListAll handles GET /api/v1/attendance.
func (h *AttendanceHandler) ListAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	records, err := h.Attendance.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
	}
	if len(records) == 0 {
		return c.JSON(http.StatusNotFound, records)
	}
	return c.JSON(http.StatusOK, records)
}
