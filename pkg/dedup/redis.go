package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "orchestrator:dedup:"

// RedisTracker shares tracked keys between instances through Redis.
type RedisTracker struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewRedisTracker connects to the Redis server at url (redis://...) and
// verifies the connection.
func NewRedisTracker(ctx context.Context, url string, logger *slog.Logger) (*RedisTracker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return NewRedisTrackerWithClient(client, DefaultKeyPrefix, logger), nil
}

func NewRedisTrackerWithClient(client redis.UniversalClient, prefix string, logger *slog.Logger) *RedisTracker {
	return &RedisTracker{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (t *RedisTracker) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	created, err := t.client.SetNX(ctx, t.prefix+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to track key: %w", err)
	}

	return !created, nil
}

func (t *RedisTracker) Close() error {
	return t.client.Close()
}
