// Package cache implements the shared read-through snapshot cache on Redis.
// Handlers serve query results from here when possible and fall back to the
// database on a miss; every mutation purges the affected keys through
// Invalidate so readers never observe a pre-mutation snapshot past the
// backend's propagation latency.  The cache owns no durable data: everything
// in it is derived and disposable, and every backend error degrades to a
// miss rather than failing the request.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/office-operations/internal/config"
)

// snapshotVersion is bumped whenever the shape of a cached payload changes,
// so a reader on a newer build never decodes a stale-schema blob written by
// an older process.  A version mismatch reads as a miss.
const snapshotVersion = 1

// envelope wraps every cached value with its schema version.
type envelope struct {
	Version int             `json:"v"`
	Data    json.RawMessage `json:"data"`
}

// Store is the process handle to the shared cache.  A Store built from a nil
// Redis client is valid and permanently misses, which is how the server runs
// when Redis is unreachable at startup.
type Store struct {
	rdb *redis.Client
	cfg config.CacheConfig
}

// New returns a Store over the shared Redis client.  rdb may be nil.
func New(rdb *redis.Client, cfg config.CacheConfig) *Store {
	return &Store{rdb: rdb, cfg: cfg}
}

func (s *Store) enabled() bool {
	return s != nil && s.rdb != nil && s.cfg.Enabled
}

// opCtx bounds a single Redis call so a slow backend cannot hold a request.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	t := s.cfg.OpTimeout
	if t <= 0 {
		t = 500 * time.Millisecond
	}
	return context.WithTimeout(ctx, t)
}

// Get returns the snapshot stored under key.  ok is false on a miss, and a
// miss is also what the caller sees for any backend error, timeout or
// version mismatch: the read path never surfaces cache failures.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if !s.enabled() {
		return nil, false
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %s failed: %v", key, err)
		}
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Version != snapshotVersion {
		return nil, false
	}
	return env.Data, true
}

// Set stores a JSON snapshot under key for the given TTL.  Best effort:
// failures are logged and swallowed, the caller already has the value.
func (s *Store) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if !s.enabled() || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(envelope{Version: snapshotVersion, Data: payload})
	if err != nil {
		log.Printf("cache: encode %s failed: %v", key, err)
		return
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if err := s.rdb.SetEx(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}

// Invalidate deletes the given keys.  Deleting an absent key is a no-op, so
// invalidation is idempotent.  Errors are logged and swallowed; the durable
// write this purge follows has already succeeded.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if !s.enabled() || len(keys) == 0 {
		return
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: invalidate %v failed: %v", keys, err)
	}
}

// UserTTL is the lifetime of user:<id> snapshots.
func (s *Store) UserTTL() time.Duration { return s.cfg.UserTTL }

// TaskTTL is the lifetime of tasks:* snapshots.
func (s *Store) TaskTTL() time.Duration { return s.cfg.TaskTTL }

// MessageTTL is the lifetime of messages:office:<id> snapshots.
func (s *Store) MessageTTL() time.Duration { return s.cfg.MessageTTL }
