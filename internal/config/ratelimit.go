package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig describes one fixed-window rate-limit policy.  Max requests
// are counted per identity inside discrete windows of the given length; the
// counter lives in Redis so the bound holds across every server process.
type RateLimitConfig struct {
	Enabled bool
	Max     int           // maximum requests per window
	Window  time.Duration // window length
	Prefix  string        // key namespace, e.g. "rl:general"
	Debug   bool
}

// LoadRateLimitConfig builds the general-traffic policy applied to all
// routes: 100 requests per 15 minutes per client identity by default.
func LoadRateLimitConfig() RateLimitConfig {
	return sanitize(RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Max:     envInt("RATE_LIMIT_MAX", 100),
		Window:  envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
		Prefix:  envStr("RATE_LIMIT_PREFIX", "rl:general"),
		Debug:   envBool("RATE_LIMIT_DEBUG", false),
	})
}

// LoadLoginRateLimitConfig builds the stricter policy applied only to the
// login endpoint to slow credential guessing: 5 attempts per 15 minutes.
func LoadLoginRateLimitConfig() RateLimitConfig {
	return sanitize(RateLimitConfig{
		Enabled: envBool("LOGIN_RATE_LIMIT_ENABLED", true),
		Max:     envInt("LOGIN_RATE_LIMIT_MAX", 5),
		Window:  envDur("LOGIN_RATE_LIMIT_WINDOW", 15*time.Minute),
		Prefix:  envStr("LOGIN_RATE_LIMIT_PREFIX", "rl:login"),
		Debug:   envBool("RATE_LIMIT_DEBUG", false),
	})
}

func sanitize(c RateLimitConfig) RateLimitConfig {
	if c.Max < 1 {
		c.Max = 1
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
