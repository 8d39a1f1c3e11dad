package relay

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/signature-relay/internal/pkg/logger"
)

// Deduper answers whether a message id was already processed. The header
// guard catches our own forwarded copies; the deduper catches provider
// re-deliveries of the same inbound message, which arrive without our
// headers.
type Deduper interface {
	// Seen marks the id processed and reports whether it already was.
	Seen(ctx context.Context, messageID string) (bool, error)
}

// RedisDedup remembers processed message ids in Redis via SETNX with a TTL.
// SETNX makes mark-and-check a single atomic operation, so two concurrent
// deliveries of the same message cannot both pass.
type RedisDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDedup creates a Redis-backed deduper.
func NewRedisDedup(client *redis.Client, ttl time.Duration) *RedisDedup {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDedup{client: client, ttl: ttl}
}

// Seen implements Deduper. Fails open: if Redis is unreachable the message
// is treated as unseen, since double-injection is still caught by the body
// markers while a dropped message is unrecoverable.
func (d *RedisDedup) Seen(ctx context.Context, messageID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, "relay:msg:"+messageID, 1, d.ttl).Result()
	if err != nil {
		logger.Warn("dedup store unavailable", "error", err)
		return false, nil
	}
	return !ok, nil
}
