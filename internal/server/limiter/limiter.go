// Package limiter throttles repeated failed logins per username using a
// fixed window. Every attempt is counted before the password is checked and a
// successful login resets the count, so after MaxFailures failures within
// Window further attempts are refused until the window that started with the
// first attempt has passed.
package limiter

import (
	"context"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Limiter counts login attempts per key.
type Limiter interface {
	// Attempt records an attempt for key and reports whether it may proceed.
	// Counting and checking happen in one atomic step.
	Attempt(ctx context.Context, key string) (bool, error)
	// Reset forgets the attempts recorded for key.
	Reset(ctx context.Context, key string) error
}

// Config sets the window shape.
type Config struct {
	MaxFailures int
	Window      time.Duration
}

const (
	defaultMaxFailures = 5
	defaultWindow      = 15 * time.Minute
)

func (c Config) normalize() Config {
	if c.MaxFailures <= 0 {
		c.MaxFailures = defaultMaxFailures
	}
	if c.Window <= 0 {
		c.Window = defaultWindow
	}
	return c
}

// storageKey hashes the username so raw names never appear in the store.
func storageKey(key string) string {
	return "login:fail:" + strconv.FormatUint(xxhash.Sum64String(key), 16)
}
