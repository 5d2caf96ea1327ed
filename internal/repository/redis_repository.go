package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CortinezO98/MisVigencias/internal/internaltypes"
)

// guardTTL keeps claimed keys long enough to cover re-runs of the same date
// without accumulating forever.
const guardTTL = 48 * time.Hour

// RedisRunGuard claims one (obligation, channel, date) key per live send so a
// second run for the same date skips instead of double-sending. The guard is
// optional: without a configured Redis the coordinator runs unguarded.
type RedisRunGuard struct {
	client *redis.Client
}

func NewRedisRunGuard(client *redis.Client) *RedisRunGuard {
	return &RedisRunGuard{client: client}
}

// FirstToday atomically claims the key and reports whether this caller won
// it. An error is returned as-is; the coordinator decides whether to fail
// open or closed.
func (g *RedisRunGuard) FirstToday(ctx context.Context, obligationID int64, channel internaltypes.Channel, day time.Time) (bool, error) {
	key := fmt.Sprintf("reminder:%d:%s:%s", obligationID, channel.String(), day.Format("2006-01-02"))

	ok, err := g.client.SetNX(ctx, key, "1", guardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis: claim key %s: %w", key, err)
	}
	return ok, nil
}
