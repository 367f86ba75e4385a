// Package service coordinates what happens around a durable write: cache
// invalidation, realtime broadcast and queue publishing.  The write itself
// decides the HTTP outcome; everything here is a side effect that may fail
// without changing it.
package service

import (
	"context"
	"log"
	"time"
)

// Invalidator purges cache keys after a mutation.  Implemented by
// *cache.Store.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

// Publisher delivers one typed event to a room across all processes.
// Implemented by *realtime.Broadcaster.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload any) error
}

// Event pairs a room with the event to publish into it.
type Event struct {
	Room    string
	Name    string
	Payload any
}

// Coordinator runs the post-write pipeline for every mutating endpoint:
// first invalidate the cache keys the write made stale, then broadcast the
// events.  The order matters — a client reacting to an event and
// immediately re-fetching must not be served the pre-mutation snapshot.
// The pipeline runs detached from the request with its own deadline, so
// response latency is governed by the durable write alone, and each step
// fails in isolation: a dead Redis costs the cache purge and the broadcast,
// never the response.
type Coordinator struct {
	Cache   Invalidator
	Bus     Publisher
	Timeout time.Duration

	// synchronous forces After to run inline; only tests set it.
	synchronous bool
}

// NewCoordinator wires the cache store and broadcaster into one pipeline.
// Either dependency may be nil, which skips its step.
func NewCoordinator(cache Invalidator, bus Publisher) *Coordinator {
	return &Coordinator{Cache: cache, Bus: bus, Timeout: 5 * time.Second}
}

// After schedules the side effects of a committed write and returns
// immediately.  keys are invalidated first, then events are published in
// the order given.  Failures are logged and swallowed.
func (c *Coordinator) After(keys []string, events ...Event) {
	if c == nil {
		return
	}
	run := func() {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		// Detached from the request context on purpose: the response has
		// already been decided and must not cancel the purge mid-flight.
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if c.Cache != nil && len(keys) > 0 {
			c.Cache.Invalidate(ctx, keys...)
		}
		for _, ev := range events {
			if c.Bus == nil {
				break
			}
			if err := c.Bus.Publish(ctx, ev.Room, ev.Name, ev.Payload); err != nil {
				log.Printf("coordinator: publish %s to %s failed: %v", ev.Name, ev.Room, err)
			}
		}
	}
	if c.synchronous {
		run()
		return
	}
	go run()
}
