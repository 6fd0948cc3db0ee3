package limiter

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
)

// MemoryLimiter keeps counters in a process-local bigcache. It is used when
// no Redis address is configured.
type MemoryLimiter struct {
	mu    sync.Mutex
	cache *bigcache.BigCache
	cfg   Config
	now   func() time.Time
}

func NewMemoryLimiter(cfg Config) (*MemoryLimiter, error) {
	cfg = cfg.normalize()
	cache, err := bigcache.NewBigCache(bigcache.DefaultConfig(cfg.Window))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &MemoryLimiter{cache: cache, cfg: cfg, now: time.Now}, nil
}

// entry layout: 8 bytes window start (unix nanos), 8 bytes count.
type entry struct {
	start time.Time
	count int64
}

func (e entry) encode() []byte {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[:8], uint64(e.start.UnixNano()))
	binary.BigEndian.PutUint64(b[8:], uint64(e.count))
	return b
}

func decodeEntry(b []byte) (entry, bool) {
	if len(b) != 16 {
		return entry{}, false
	}
	return entry{
		start: time.Unix(0, int64(binary.BigEndian.Uint64(b[:8]))),
		count: int64(binary.BigEndian.Uint64(b[8:])),
	}, true
}

// load returns the live entry for k. Entries older than the window count as
// absent even if the cache has not evicted them yet.
func (l *MemoryLimiter) load(k string) (entry, bool, error) {
	b, err := l.cache.Get(k)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return entry{}, false, nil
		}
		return entry{}, false, err
	}
	e, ok := decodeEntry(b)
	if !ok || l.now().Sub(e.start) >= l.cfg.Window {
		return entry{}, false, nil
	}
	return e, true, nil
}

func (l *MemoryLimiter) Attempt(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := storageKey(key)
	e, ok, err := l.load(k)
	if err != nil {
		return false, err
	}
	if !ok {
		e = entry{start: l.now()}
	}
	e.count++
	if err := l.cache.Set(k, e.encode()); err != nil {
		return false, err
	}
	return e.count <= int64(l.cfg.MaxFailures), nil
}

func (l *MemoryLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.cache.Delete(storageKey(key))
	if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Close stops the cache's background cleaner.
func (l *MemoryLimiter) Close() error {
	return l.cache.Close()
}
