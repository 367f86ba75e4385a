package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBroadcasterLocalPublish verifies that without Redis the broadcaster
// still delivers to sessions on this process.
func TestBroadcasterLocalPublish(t *testing.T) {
	hub := NewHub()
	m := newFakeMember("m", 4)
	hub.Join(m, OfficeRoom(5))

	bus := NewBroadcaster(nil, hub)
	err := bus.Publish(context.Background(), OfficeRoom(5), EventTaskCreated, map[string]uint64{"id": 9})
	require.NoError(t, err)

	got := m.frames()
	require.Len(t, got, 1)
	assert.Contains(t, string(got[0]), EventTaskCreated)
	assert.Contains(t, string(got[0]), `"id":9`)
}

// TestBroadcasterPublishBadPayload verifies that an unencodable payload is
// reported to the caller instead of being silently dropped.
func TestBroadcasterPublishBadPayload(t *testing.T) {
	bus := NewBroadcaster(nil, NewHub())
	err := bus.Publish(context.Background(), OfficeRoom(1), EventNewTask, func() {})
	assert.Error(t, err)
}

// TestBroadcasterDispatch verifies the receiving side of the bus: a valid
// envelope is forwarded to the room, garbage is dropped without panicking.
func TestBroadcasterDispatch(t *testing.T) {
	hub := NewHub()
	m := newFakeMember("m", 4)
	hub.Join(m, UserRoom(7))

	bus := NewBroadcaster(nil, hub)

	raw, err := json.Marshal(Envelope{
		Room:  UserRoom(7),
		Event: EventAttendanceCheckIn,
		Data:  json.RawMessage(`{"date":"2026-08-30"}`),
	})
	require.NoError(t, err)
	bus.dispatch(raw)

	got := m.frames()
	require.Len(t, got, 1)
	assert.Contains(t, string(got[0]), EventAttendanceCheckIn)

	bus.dispatch([]byte("not json"))
	assert.Empty(t, m.frames())
}
