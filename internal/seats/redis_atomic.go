package seats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrBookingInProgress = errors.New("an auto-booking for this window is already in progress")

// BookingGuard stops the same auto-booking from running twice at once.
type BookingGuard interface {
	// Acquire returns a token that must be passed to Release.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, error)
	Release(ctx context.Context, key, token string) error
}

// Lua script: claim the key only if nobody holds it
var luaAcquireGuard = redis.NewScript(`
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
	return 1
end
return 0
`)

// Lua script: delete the key only if it still carries our token
var luaReleaseGuard = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisBookingGuard keeps guards as Redis keys with a TTL, so a crashed
// process never blocks a window for longer than the TTL.
type RedisBookingGuard struct {
	redis *redis.Client
}

func NewRedisBookingGuard(client *redis.Client) *RedisBookingGuard {
	return &RedisBookingGuard{redis: client}
}

func (g *RedisBookingGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if g.redis == nil {
		return "", fmt.Errorf("redis client not available")
	}

	token := uuid.NewString()
	acquired, err := luaAcquireGuard.Run(ctx, g.redis, []string{key}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return "", fmt.Errorf("failed to acquire booking guard: %w", err)
	}
	if acquired == 0 {
		return "", ErrBookingInProgress
	}
	return token, nil
}

func (g *RedisBookingGuard) Release(ctx context.Context, key, token string) error {
	if g.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	if err := luaReleaseGuard.Run(ctx, g.redis, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release booking guard: %w", err)
	}
	return nil
}

// PreloadScripts loads the guard scripts so the first booking skips the EVAL fallback
func (g *RedisBookingGuard) PreloadScripts(ctx context.Context) error {
	if g.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	if err := luaAcquireGuard.Load(ctx, g.redis).Err(); err != nil {
		return fmt.Errorf("failed to load acquire script: %w", err)
	}
	if err := luaReleaseGuard.Load(ctx, g.redis).Err(); err != nil {
		return fmt.Errorf("failed to load release script: %w", err)
	}
	return nil
}

// NoopBookingGuard always grants the guard. Used when Redis is disabled.
type NoopBookingGuard struct{}

func (NoopBookingGuard) Acquire(context.Context, string, time.Duration) (string, error) {
	return "", nil
}

func (NoopBookingGuard) Release(context.Context, string, string) error { return nil }
