// Package queue defines message payloads exchanged over the message broker.
package queue

// AttendanceRecordedEvent is published whenever a check-in or check-out is
// committed.  It carries enough information for downstream consumers to
// build an audit trail without querying the primary database.
type AttendanceRecordedEvent struct {
	AttendanceID uint64 `json:"attendance_id"`
	UserID       uint64 `json:"user_id"`
	Action       string `json:"action"` // "check-in" | "check-out"
	Date         string `json:"date"`   // YYYY-MM-DD
	Time         string `json:"time"`   // HH:MM:SS
	RecordedAt   string `json:"recorded_at"`
}
