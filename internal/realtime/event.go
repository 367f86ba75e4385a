package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Event names delivered to connected clients.  These are part of the client
// contract and must not change without coordinating with the frontends.
const (
	EventAttendanceCheckIn  = "attendanceCheckIn"
	EventAttendanceCheckOut = "attendanceCheckOut"
	EventNewMessage         = "new-message"
	EventMessageUpdated     = "message-updated"
	EventMessageDeleted     = "message-deleted"
	EventTaskCreated        = "taskCreated"
	EventNewTask            = "new-task"
	EventTaskUpdated        = "taskUpdated"
	EventTaskDeleted        = "taskDeleted"
)

// OfficeRoom names the tenant-wide room every member of an office can join.
func OfficeRoom(officeID uint64) string {
	return fmt.Sprintf("office-%d", officeID)
}

// UserRoom names the personal room of a single user.
func UserRoom(userID uint64) string {
	return strconv.FormatUint(userID, 10)
}

// Envelope is the message format on the shared broadcast bus.  Data is kept
// raw so intermediate processes never re-encode the payload.
type Envelope struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// frame is what a client receives on its websocket: the event name and the
// payload, without the internal room routing field.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
