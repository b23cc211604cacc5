// Package cache is the profile fallback cache: the last profile fetched or
// written for a user, served when the document store cannot be reached.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/folio-social/folio-backend/internal/profiles/domain"
	redisstore "github.com/folio-social/folio-backend/internal/storage/redis"
)

// RedisCache is last-writer-wins: Put replaces the cached copy wholesale.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func key(uid string) string {
	return fmt.Sprintf("profilecache:%s", uid)
}

// Get returns the cached profile and whether one was present.
func (c *RedisCache) Get(ctx context.Context, uid string) (*domain.Profile, bool, error) {
	data, err := c.client.Get(ctx, key(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, redisstore.Classify(err)
	}

	var p domain.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached profile: %w", err)
	}
	if p.Connections == nil {
		p.Connections = map[string]domain.Connection{}
	}
	return &p, true, nil
}

func (c *RedisCache) Put(ctx context.Context, p *domain.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return redisstore.Classify(c.client.Set(ctx, key(p.UserID), data, c.ttl).Err())
}

func (c *RedisCache) Delete(ctx context.Context, uid string) error {
	return redisstore.Classify(c.client.Del(ctx, key(uid)).Err())
}
