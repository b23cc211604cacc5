package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/folio-social/folio-backend/internal/profiles/domain"
	redisstore "github.com/folio-social/folio-backend/internal/storage/redis"
)

// RedisRepository keeps the profile document as JSON under profile:{uid} and
// the connection mirrors in the hash profile:{uid}:connections.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func profileKey(uid string) string {
	return fmt.Sprintf("profile:%s", uid)
}

func connectionsKey(uid string) string {
	return fmt.Sprintf("profile:%s:connections", uid)
}

func (r *RedisRepository) Get(ctx context.Context, uid string) (*domain.Profile, error) {
	pipe := r.client.Pipeline()
	docCmd := pipe.Get(ctx, profileKey(uid))
	connCmd := pipe.HGetAll(ctx, connectionsKey(uid))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, redisstore.Classify(err)
	}

	data, err := docCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, redisstore.Classify(err)
	}

	var p domain.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	p.Connections, err = decodeConnections(connCmd.Val())
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisRepository) Save(ctx context.Context, p *domain.Profile) error {
	doc := *p
	doc.Connections = nil
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return redisstore.Classify(r.client.Set(ctx, profileKey(p.UserID), data, 0).Err())
}

func (r *RedisRepository) Delete(ctx context.Context, uid string) error {
	return redisstore.Classify(r.client.Del(ctx, profileKey(uid), connectionsKey(uid)).Err())
}

func (r *RedisRepository) SetConnection(ctx context.Context, ownerUID string, c domain.Connection) error {
	exists, err := r.client.Exists(ctx, profileKey(ownerUID)).Result()
	if err != nil {
		return redisstore.Classify(err)
	}
	if exists == 0 {
		return domain.ErrProfileNotFound
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}
	return redisstore.Classify(r.client.HSet(ctx, connectionsKey(ownerUID), c.UserID, data).Err())
}

func (r *RedisRepository) RemoveConnection(ctx context.Context, ownerUID, otherUID string) error {
	return redisstore.Classify(r.client.HDel(ctx, connectionsKey(ownerUID), otherUID).Err())
}

func (r *RedisRepository) ListConnections(ctx context.Context, uid string) ([]domain.Connection, error) {
	pipe := r.client.Pipeline()
	existsCmd := pipe.Exists(ctx, profileKey(uid))
	connCmd := pipe.HGetAll(ctx, connectionsKey(uid))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, redisstore.Classify(err)
	}
	if existsCmd.Val() == 0 {
		return nil, domain.ErrProfileNotFound
	}

	conns, err := decodeConnections(connCmd.Val())
	if err != nil {
		return nil, err
	}
	return SortedConnections(conns), nil
}

func (r *RedisRepository) HasConnection(ctx context.Context, ownerUID, otherUID string) (bool, error) {
	ok, err := r.client.HExists(ctx, connectionsKey(ownerUID), otherUID).Result()
	if err != nil {
		return false, redisstore.Classify(err)
	}
	return ok, nil
}

func decodeConnections(raw map[string]string) (map[string]domain.Connection, error) {
	out := make(map[string]domain.Connection, len(raw))
	for uid, v := range raw {
		var c domain.Connection
		if err := json.Unmarshal([]byte(v), &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal connection %s: %w", uid, err)
		}
		out[uid] = c
	}
	return out, nil
}
