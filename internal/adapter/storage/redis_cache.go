package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/seckill/internal/core/domain"
)

const itemKeyPrefix = "seckill:item:"

// RedisItemCache fronts the catalog for hot item metadata. The cached stock
// value is a snapshot for display only; decrement decisions never read it.
type RedisItemCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisItemCache(client *redis.Client, ttl time.Duration) *RedisItemCache {
	return &RedisItemCache{client: client, ttl: ttl}
}

func (r *RedisItemCache) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	data, err := r.client.Get(ctx, fmt.Sprintf("%s%d", itemKeyPrefix, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var item domain.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &item, nil
}

func (r *RedisItemCache) PutItem(ctx context.Context, item domain.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	return r.client.Set(ctx, fmt.Sprintf("%s%d", itemKeyPrefix, item.ID), data, r.ttl).Err()
}
