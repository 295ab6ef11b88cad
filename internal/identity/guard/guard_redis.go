package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const markerKeyPrefix = "deletion_guard:"

// RedisGuard keeps deletion markers in Redis with a native TTL, so markers
// expire without a sweep even across process restarts.
type RedisGuard struct {
	client redis.UniversalClient
	window time.Duration
}

// NewRedis constructs a Redis-backed deletion guard. A non-positive window
// falls back to the default.
func NewRedis(client redis.UniversalClient, window time.Duration) *RedisGuard {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisGuard{client: client, window: window}
}

func (g *RedisGuard) Mark(ctx context.Context, subjectID string) error {
	if err := g.client.Set(ctx, markerKeyPrefix+subjectID, time.Now().UnixNano(), g.window).Err(); err != nil {
		return fmt.Errorf("mark deletion: %w", err)
	}
	return nil
}

func (g *RedisGuard) IsMarked(ctx context.Context, subjectID string) (bool, error) {
	n, err := g.client.Exists(ctx, markerKeyPrefix+subjectID).Result()
	if err != nil {
		return false, fmt.Errorf("check deletion marker: %w", err)
	}
	return n > 0, nil
}

func (g *RedisGuard) Clear(ctx context.Context, subjectID string) error {
	if err := g.client.Del(ctx, markerKeyPrefix+subjectID).Err(); err != nil {
		return fmt.Errorf("clear deletion marker: %w", err)
	}
	return nil
}
