package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSessionApply drives the membership commands a client sends over the
// wire.  No connection is needed; apply only touches the hub.
func TestSessionApply(t *testing.T) {
	hub := NewHub()
	s := newSession(hub, nil)

	decode := func(raw string) command {
		var cmd command
		require.NoError(t, json.Unmarshal([]byte(raw), &cmd))
		return cmd
	}

	s.apply(decode(`{"action":"join-office","officeId":4}`))
	s.apply(decode(`{"action":"join","userId":9}`))
	assert.Equal(t, 1, hub.RoomSize(OfficeRoom(4)))
	assert.Equal(t, 1, hub.RoomSize(UserRoom(9)))

	s.apply(decode(`{"action":"leave-office","officeId":4}`))
	assert.Equal(t, 0, hub.RoomSize(OfficeRoom(4)))
	assert.Equal(t, 1, hub.RoomSize(UserRoom(9)), "leaving the office keeps the personal room")

	// Zero ids and unknown actions are ignored.
	s.apply(decode(`{"action":"join-office"}`))
	s.apply(decode(`{"action":"dance","officeId":4}`))
	assert.Equal(t, 0, hub.RoomSize(OfficeRoom(4)))
}

// TestSessionEnqueue verifies the non-blocking delivery contract and that
// a shut-down session refuses frames instead of panicking.
func TestSessionEnqueue(t *testing.T) {
	s := newSession(NewHub(), nil)

	for i := 0; i < sendQueueSize; i++ {
		require.True(t, s.Enqueue([]byte("x")))
	}
	assert.False(t, s.Enqueue([]byte("overflow")), "full queue drops, never blocks")

	s.shutdown()
	assert.False(t, s.Enqueue([]byte("after close")))
	s.shutdown() // idempotent
}
