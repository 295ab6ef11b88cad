package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chemconsole/internal/presence"
)

const presenceKeyPrefix = "presence:"

// Redis keeps presence entries as JSON values with a native key TTL, so
// stale entries disappear without an application sweep.
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Upsert(ctx context.Context, entry presence.Entry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal presence entry: %w", err)
	}
	if err := s.client.Set(ctx, presenceKeyPrefix+entry.SubjectID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("upsert presence entry: %w", err)
	}
	return nil
}

func (s *Redis) List(ctx context.Context) ([]presence.Entry, error) {
	var (
		out    []presence.Entry
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, presenceKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan presence keys: %w", err)
		}
		for _, key := range keys {
			raw, err := s.client.Get(ctx, key).Bytes()
			if err != nil {
				// The key may have expired between SCAN and GET.
				if errors.Is(err, redis.Nil) {
					continue
				}
				return nil, fmt.Errorf("get presence entry: %w", err)
			}
			var entry presence.Entry
			if err := json.Unmarshal(raw, &entry); err != nil {
				continue
			}
			out = append(out, entry)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

// Sweep is a no-op; Redis expires presence keys natively.
func (s *Redis) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
