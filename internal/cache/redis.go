package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBuffer implements Buffer on a Redis list so several server
// processes can share pre-generated scrambles.
type RedisBuffer struct {
	client *redis.Client
	key    string
}

type RedisConfig struct {
	Prefix string
	Puzzle string
}

// NewRedisBuffer creates a Redis-backed buffer for one puzzle.
func NewRedisBuffer(client *redis.Client, config RedisConfig) *RedisBuffer {
	return &RedisBuffer{
		client: client,
		key:    BufferKey(config.Prefix, config.Puzzle),
	}
}

// Push appends scrambles with RPUSH.
func (b *RedisBuffer) Push(ctx context.Context, scrambles []string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if len(scrambles) == 0 {
		return nil
	}

	args := make([]any, len(scrambles))
	for i, s := range scrambles {
		args[i] = s
	}
	if err := b.client.RPush(ctx, b.key, args...).Err(); err != nil {
		return fmt.Errorf("redis rpush failed: %w", err)
	}
	return nil
}

// Pop removes up to n scrambles with a single LPOP, which Redis executes
// atomically.
func (b *RedisBuffer) Pop(ctx context.Context, n int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if n <= 0 {
		return nil, nil
	}

	res, err := b.client.LPopCount(ctx, b.key, n).Result()
	if errors.Is(err, redis.Nil) {
		// empty or missing list is a clean miss
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis lpop failed: %w", err)
	}
	return res, nil
}

// Len returns the list length.
func (b *RedisBuffer) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}
	n, err := b.client.LLen(ctx, b.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis llen failed: %w", err)
	}
	return int(n), nil
}
