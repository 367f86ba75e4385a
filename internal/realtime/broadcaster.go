package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// busChannel is the single Redis channel every server process subscribes
// to.  Routing by room happens in each process against its local hub, which
// keeps publishing one round trip regardless of how many rooms exist.
const busChannel = "realtime:events"

// publishTimeout bounds the Redis round trip of a single publish.
const publishTimeout = 2 * time.Second

// Broadcaster spans the local hub across processes.  Publish writes an
// envelope to the bus; Run pulls envelopes off the bus and forwards them to
// locally connected sessions.  With no Redis client the broadcaster still
// works for sessions on this process only.
type Broadcaster struct {
	rdb *redis.Client
	hub *Hub
}

// NewBroadcaster wires a hub to the shared bus.  rdb may be nil.
func NewBroadcaster(rdb *redis.Client, hub *Hub) *Broadcaster {
	return &Broadcaster{rdb: rdb, hub: hub}
}

// Publish sends one typed event to every session in room, on any process.
// Fire and forget: delivery is at most once per connected session and there
// is no persisted log, so sessions joining later see nothing.
func (b *Broadcaster) Publish(ctx context.Context, room, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env := Envelope{Room: room, Event: event, Data: data}
	if b.rdb == nil {
		b.hub.Forward(&env)
		return nil
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return b.rdb.Publish(ctx, busChannel, raw).Err()
}

// Run subscribes to the bus and forwards every envelope to the local hub
// until ctx is cancelled.  go-redis resubscribes internally after a dropped
// connection; events published while the link is down are simply lost,
// which the delivery contract allows.
func (b *Broadcaster) Run(ctx context.Context) {
	if b.rdb == nil {
		return
	}
	sub := b.rdb.Subscribe(ctx, busChannel)
	defer func() { _ = sub.Close() }()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.dispatch([]byte(msg.Payload))
		}
	}
}

// dispatch decodes one bus message and hands it to the hub.  Malformed
// messages are dropped with a log line.
func (b *Broadcaster) dispatch(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("realtime: bad bus message: %v", err)
		return
	}
	b.hub.Forward(&env)
}
