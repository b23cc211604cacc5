package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/folio-social/folio-backend/internal/notifications/domain"
	redisstore "github.com/folio-social/folio-backend/internal/storage/redis"
)

// RedisRepository keeps each notification as JSON under notif:{id} with these indexes:
//
//	notif:to:{uid}       ZSET of notification ids addressed to uid, by createdAt
//	notif:unread:{uid}   SET of unread notification ids addressed to uid
//	notif:post:{postId}  SET of notification ids that point at the post
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func notificationKey(id string) string { return fmt.Sprintf("notif:%s", id) }
func toKey(uid string) string          { return fmt.Sprintf("notif:to:%s", uid) }
func unreadKey(uid string) string      { return fmt.Sprintf("notif:unread:%s", uid) }
func postKey(postID string) string     { return fmt.Sprintf("notif:post:%s", postID) }

func (r *RedisRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, notificationKey(n.ID), data, 0)
	pipe.ZAdd(ctx, toKey(n.ToUserID), redis.Z{Score: float64(n.CreatedAt.UnixMicro()), Member: n.ID})
	if !n.Read {
		pipe.SAdd(ctx, unreadKey(n.ToUserID), n.ID)
	}
	if n.PostID != "" {
		pipe.SAdd(ctx, postKey(n.PostID), n.ID)
	}
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*domain.Notification, error) {
	data, err := r.client.Get(ctx, notificationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotificationNotFound
	}
	if err != nil {
		return nil, redisstore.Classify(err)
	}
	return unmarshal(data)
}

func (r *RedisRepository) ListFor(ctx context.Context, uid string, limit int) ([]*domain.Notification, error) {
	ids, err := r.client.ZRevRange(ctx, toKey(uid), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, redisstore.Classify(err)
	}
	return r.load(ctx, ids)
}

func (r *RedisRepository) CountUnread(ctx context.Context, uid string) (int, error) {
	n, err := r.client.SCard(ctx, unreadKey(uid)).Result()
	if err != nil {
		return 0, redisstore.Classify(err)
	}
	return int(n), nil
}

func (r *RedisRepository) MarkRead(ctx context.Context, id string) error {
	n, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if n.Read {
		return nil
	}
	n.Read = true
	return r.put(ctx, n)
}

func (r *RedisRepository) MarkAllRead(ctx context.Context, uid string) (int, error) {
	ids, err := r.client.SMembers(ctx, unreadKey(uid)).Result()
	if err != nil {
		return 0, redisstore.Classify(err)
	}
	unread, err := r.load(ctx, ids)
	if err != nil {
		return 0, err
	}

	pipe := r.client.TxPipeline()
	for _, n := range unread {
		n.Read = true
		data, err := json.Marshal(n)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal notification: %w", err)
		}
		pipe.Set(ctx, notificationKey(n.ID), data, 0)
	}
	pipe.Del(ctx, unreadKey(uid))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, redisstore.Classify(err)
	}
	return len(unread), nil
}

// Delete removes the notification. Deleting a missing one is a no-op.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	n, err := r.Get(ctx, id)
	if errors.Is(err, domain.ErrNotificationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	r.unindex(ctx, pipe, n)
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

func (r *RedisRepository) DeleteByPost(ctx context.Context, postID string) error {
	ids, err := r.client.SMembers(ctx, postKey(postID)).Result()
	if err != nil {
		return redisstore.Classify(err)
	}
	notifications, err := r.load(ctx, ids)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	for _, n := range notifications {
		r.unindex(ctx, pipe, n)
	}
	pipe.Del(ctx, postKey(postID))
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

func (r *RedisRepository) put(ctx context.Context, n *domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, notificationKey(n.ID), data, 0)
	if n.Read {
		pipe.SRem(ctx, unreadKey(n.ToUserID), n.ID)
	}
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

func (r *RedisRepository) unindex(ctx context.Context, pipe redis.Pipeliner, n *domain.Notification) {
	pipe.Del(ctx, notificationKey(n.ID))
	pipe.ZRem(ctx, toKey(n.ToUserID), n.ID)
	pipe.SRem(ctx, unreadKey(n.ToUserID), n.ID)
	if n.PostID != "" {
		pipe.SRem(ctx, postKey(n.PostID), n.ID)
	}
}

func (r *RedisRepository) load(ctx context.Context, ids []string) ([]*domain.Notification, error) {
	if len(ids) == 0 {
		return []*domain.Notification{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = notificationKey(id)
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, redisstore.Classify(err)
	}

	out := make([]*domain.Notification, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := unmarshal([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func unmarshal(data []byte) (*domain.Notification, error) {
	var n domain.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return &n, nil
}
