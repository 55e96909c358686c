package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"campusevents/internal/domain"
)

const (
	redisKeyPrefix    = "campusevents:event-lock:"
	redisRetryBackoff = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes per-event mutations across processes with SET NX PX leases.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	logger *slog.Logger
}

// NewRedisLocker returns an EventLocker backed by Redis. ttl bounds how long a crashed
// holder can block others; wait bounds how long Lock retries before reporting ErrConflict.
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration, logger *slog.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait, logger: logger}
}

var _ domain.EventLocker = (*RedisLocker)(nil)

func (l *RedisLocker) Lock(ctx context.Context, eventID string) (func(), error) {
	key := redisKeyPrefix + eventID
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire event lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("acquire event lock %s: %w", eventID, domain.ErrConflict)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for event lock: %w: %w", domain.ErrConflict, ctx.Err())
		case <-time.After(redisRetryBackoff):
		}
	}

	return func() {
		// The request context may already be cancelled; release on a fresh one.
		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("release event lock failed", "event_id", eventID, "err", err)
		}
	}, nil
}
