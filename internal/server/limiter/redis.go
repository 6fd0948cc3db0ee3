package limiter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps counters in Redis so that every server instance sees
// the same failures.
type RedisLimiter struct {
	client redis.UniversalClient
	cfg    Config
}

func NewRedisLimiter(client redis.UniversalClient, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg.normalize()}
}

// attemptScript increments the counter and starts the window on the first
// attempt. The window is not extended by later attempts.
var attemptScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

func (l *RedisLimiter) Attempt(ctx context.Context, key string) (bool, error) {
	count, err := attemptScript.Run(ctx, l.client, []string{storageKey(key)}, l.cfg.Window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis attempt: %w", err)
	}
	return count <= int64(l.cfg.MaxFailures), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, storageKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
