package realtime

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMember is a hub participant backed by a buffered channel, standing in
// for a websocket session.
type fakeMember struct {
	id   string
	recv chan []byte
}

func newFakeMember(id string, capacity int) *fakeMember {
	return &fakeMember{id: id, recv: make(chan []byte, capacity)}
}

func (f *fakeMember) ID() string { return f.id }

func (f *fakeMember) Enqueue(frame []byte) bool {
	select {
	case f.recv <- frame:
		return true
	default:
		return false
	}
}

// frames drains everything currently queued for the member.
func (f *fakeMember) frames() [][]byte {
	var out [][]byte
	for {
		select {
		case raw := <-f.recv:
			out = append(out, raw)
		default:
			return out
		}
	}
}

func envelope(room, event string, payload any) *Envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return &Envelope{Room: room, Event: event, Data: data}
}

// TestHubJoinLeave verifies room membership bookkeeping: joining, leaving,
// and the cleanup of a member that disconnects.
func TestHubJoinLeave(t *testing.T) {
	hub := NewHub()
	alice := newFakeMember("alice", 4)
	bob := newFakeMember("bob", 4)

	hub.Join(alice, "office-1")
	hub.Join(bob, "office-1")
	hub.Join(alice, "7") // personal room alongside the office room
	assert.Equal(t, 2, hub.RoomSize("office-1"))
	assert.Equal(t, 1, hub.RoomSize("7"))

	hub.Leave(alice, "office-1")
	assert.Equal(t, 1, hub.RoomSize("office-1"))
	assert.Equal(t, 1, hub.RoomSize("7"), "leaving one room must not touch the others")

	// Leaving a room the member never joined is a no-op.
	hub.Leave(bob, "office-99")
	assert.Equal(t, 1, hub.RoomSize("office-1"))

	// LeaveAll is what the session teardown calls.
	hub.Join(alice, "office-1")
	hub.LeaveAll(alice)
	assert.Equal(t, 1, hub.RoomSize("office-1"))
	assert.Equal(t, 0, hub.RoomSize("7"))

	// Joining the empty room name is rejected outright.
	hub.Join(alice, "")
	assert.Equal(t, 0, hub.RoomSize(""))
}

// TestHubForward verifies that a frame reaches exactly the members of the
// target room, encoded without the internal routing field.
func TestHubForward(t *testing.T) {
	hub := NewHub()
	alice := newFakeMember("alice", 4)
	bob := newFakeMember("bob", 4)
	carol := newFakeMember("carol", 4)

	hub.Join(alice, OfficeRoom(1))
	hub.Join(bob, OfficeRoom(1))
	hub.Join(carol, OfficeRoom(2))

	hub.Forward(envelope(OfficeRoom(1), EventNewMessage, map[string]string{"content": "hi"}))

	for _, m := range []*fakeMember{alice, bob} {
		got := m.frames()
		require.Len(t, got, 1, "member %s", m.id)

		var f struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Room  *string         `json:"room"`
		}
		require.NoError(t, json.Unmarshal(got[0], &f))
		assert.Equal(t, EventNewMessage, f.Event)
		assert.JSONEq(t, `{"content":"hi"}`, string(f.Data))
		assert.Nil(t, f.Room, "room routing must not leak into the client frame")
	}
	assert.Empty(t, carol.frames(), "other rooms must not see the event")

	// A room with no members is a silent no-op.
	hub.Forward(envelope(OfficeRoom(42), EventTaskCreated, "x"))
}

// TestHubForwardOrder verifies that a member receives frames in publish
// order.
func TestHubForwardOrder(t *testing.T) {
	hub := NewHub()
	m := newFakeMember("m", 16)
	hub.Join(m, OfficeRoom(3))

	for i := 0; i < 5; i++ {
		hub.Forward(envelope(OfficeRoom(3), EventTaskUpdated, map[string]int{"seq": i}))
	}

	got := m.frames()
	require.Len(t, got, 5)
	for i, raw := range got {
		assert.Contains(t, string(raw), fmt.Sprintf(`"seq":%d`, i))
	}
}

// TestHubForwardSlowMember verifies that a member with a full queue loses
// the frame instead of stalling delivery to the rest of the room.
func TestHubForwardSlowMember(t *testing.T) {
	hub := NewHub()
	slow := newFakeMember("slow", 1)
	fast := newFakeMember("fast", 4)
	hub.Join(slow, OfficeRoom(1))
	hub.Join(fast, OfficeRoom(1))

	hub.Forward(envelope(OfficeRoom(1), EventNewTask, 1))
	hub.Forward(envelope(OfficeRoom(1), EventNewTask, 2))

	assert.Len(t, slow.frames(), 1, "second frame is dropped once the queue is full")
	assert.Len(t, fast.frames(), 2, "fast member still gets everything")
}

// TestRoomNames pins the room naming scheme the frontends join by.
func TestRoomNames(t *testing.T) {
	assert.Equal(t, "office-12", OfficeRoom(12))
	assert.Equal(t, "12", UserRoom(12))
}
