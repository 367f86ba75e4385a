package config

import "time"

// CacheConfig defines settings for the Redis snapshot cache.  When Enabled is
// false or no Redis client is configured, caching is disabled and every read
// goes straight to the database.  TTLs are split per resource family: user
// profiles change rarely and keep a longer lifetime than task and message
// collections, which are invalidated on every mutation anyway.
type CacheConfig struct {
	Enabled    bool
	UserTTL    time.Duration // lifetime of user:<id> snapshots
	TaskTTL    time.Duration // lifetime of tasks:* snapshots
	MessageTTL time.Duration // lifetime of messages:office:<id> snapshots
	OpTimeout  time.Duration // upper bound for a single Redis call
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:    envBool("CACHE_ENABLED", true),
		UserTTL:    envDur("CACHE_USER_TTL", 300*time.Second),
		TaskTTL:    envDur("CACHE_TASK_TTL", 60*time.Second),
		MessageTTL: envDur("CACHE_MESSAGE_TTL", 60*time.Second),
		OpTimeout:  envDur("CACHE_OP_TIMEOUT", 500*time.Millisecond),
	}
}
