// Package realtime implements live fan-out of mutation events to connected
// clients.  Each server process keeps a local Hub of websocket sessions and
// their room memberships; publishing goes through a shared Redis channel
// that every process subscribes to, so an event accepted by one process
// reaches sessions held by any other.  Membership is ephemeral: it lives
// exactly as long as the connection, and a reconnecting client re-joins its
// rooms itself.
package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Member is a hub participant able to receive encoded frames.  Session is
// the production implementation; tests supply their own.
type Member interface {
	// ID identifies the member for logging.
	ID() string
	// Enqueue offers a frame for delivery and reports whether it was
	// accepted.  It must never block.
	Enqueue(frame []byte) bool
}

// Hub is the per-process session registry.  It knows nothing about Redis:
// the Broadcaster feeds it envelopes and it forwards them to whichever of
// its local members joined the target room.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[Member]struct{}
	members map[Member]map[string]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[Member]struct{}),
		members: make(map[Member]map[string]struct{}),
	}
}

// Join adds m to room.  A member may belong to any number of rooms, e.g. a
// personal room and an office room at the same time.
func (h *Hub) Join(m Member, room string) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[Member]struct{})
	}
	h.rooms[room][m] = struct{}{}
	if h.members[m] == nil {
		h.members[m] = make(map[string]struct{})
	}
	h.members[m][room] = struct{}{}
}

// Leave removes m from room.  Leaving a room the member never joined is a
// no-op.
func (h *Hub) Leave(m Member, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(m, room)
}

// LeaveAll removes m from every room.  Called when the connection closes.
func (h *Hub) LeaveAll(m Member) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range h.members[m] {
		h.drop(m, room)
	}
	delete(h.members, m)
}

// drop removes one membership edge.  Caller holds the lock.
func (h *Hub) drop(m Member, room string) {
	if set := h.rooms[room]; set != nil {
		delete(set, m)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
	if set := h.members[m]; set != nil {
		delete(set, room)
	}
}

// RoomSize reports how many local members have joined room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Forward encodes env once and offers it to every local member of the room.
// A member whose send queue is full loses the frame; delivery is at most
// once and a slow client must not stall the rest of the room.
func (h *Hub) Forward(env *Envelope) {
	raw, err := json.Marshal(frame{Event: env.Event, Data: env.Data})
	if err != nil {
		log.Printf("realtime: encode frame for room %s failed: %v", env.Room, err)
		return
	}
	h.mu.RLock()
	targets := make([]Member, 0, len(h.rooms[env.Room]))
	for m := range h.rooms[env.Room] {
		targets = append(targets, m)
	}
	h.mu.RUnlock()
	for _, m := range targets {
		if !m.Enqueue(raw) {
			log.Printf("realtime: dropping %s frame for slow session %s", env.Event, m.ID())
		}
	}
}
