package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/folio-social/folio-backend/internal/connections/domain"
	redisstore "github.com/folio-social/folio-backend/internal/storage/redis"
)

// RedisRepository keeps each request as JSON under connreq:{id} with these indexes:
//
//	connreq:pending:{from}:{to}    request id of the pending request from -> to
//	connreq:pending_to:{uid}       ZSET of pending request ids addressed to uid, by createdAt
//	connreq:pending_from:{uid}     ZSET of pending request ids sent by uid, by createdAt
//	connreq:accepted:{uid}         SET of accepted request ids involving uid
//	connreq:accepted_at            ZSET of accepted request ids, by respondedAt
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func requestKey(id string) string           { return fmt.Sprintf("connreq:%s", id) }
func pendingPairKey(from, to string) string { return fmt.Sprintf("connreq:pending:%s:%s", from, to) }
func pendingToKey(uid string) string        { return fmt.Sprintf("connreq:pending_to:%s", uid) }
func pendingFromKey(uid string) string      { return fmt.Sprintf("connreq:pending_from:%s", uid) }
func acceptedKey(uid string) string         { return fmt.Sprintf("connreq:accepted:%s", uid) }

const acceptedAtKey = "connreq:accepted_at"

func (r *RedisRepository) Create(ctx context.Context, req *domain.ConnectionRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal connection request: %w", err)
	}

	score := float64(req.CreatedAt.UnixMicro())
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, requestKey(req.ID), data, 0)
	pipe.Set(ctx, pendingPairKey(req.FromUserID, req.ToUserID), req.ID, 0)
	pipe.ZAdd(ctx, pendingToKey(req.ToUserID), redis.Z{Score: score, Member: req.ID})
	pipe.ZAdd(ctx, pendingFromKey(req.FromUserID), redis.Z{Score: score, Member: req.ID})
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*domain.ConnectionRequest, error) {
	data, err := r.client.Get(ctx, requestKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, redisstore.Classify(err)
	}
	return unmarshal(data)
}

func (r *RedisRepository) FindPending(ctx context.Context, fromUID, toUID string) (*domain.ConnectionRequest, error) {
	id, err := r.client.Get(ctx, pendingPairKey(fromUID, toUID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, redisstore.Classify(err)
	}

	req, err := r.Get(ctx, id)
	if errors.Is(err, domain.ErrRequestNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if req.Status != domain.StatusPending {
		return nil, nil
	}
	return req, nil
}

func (r *RedisRepository) ListPendingTo(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error) {
	return r.listByZSet(ctx, pendingToKey(uid))
}

func (r *RedisRepository) ListPendingFrom(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error) {
	return r.listByZSet(ctx, pendingFromKey(uid))
}

func (r *RedisRepository) CountPendingTo(ctx context.Context, uid string) (int, error) {
	n, err := r.client.ZCard(ctx, pendingToKey(uid)).Result()
	if err != nil {
		return 0, redisstore.Classify(err)
	}
	return int(n), nil
}

func (r *RedisRepository) ListAccepted(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error) {
	ids, err := r.client.SMembers(ctx, acceptedKey(uid)).Result()
	if err != nil {
		return nil, redisstore.Classify(err)
	}
	reqs, err := r.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(reqs)
	return reqs, nil
}

func (r *RedisRepository) ListAcceptedSince(ctx context.Context, since time.Time) ([]*domain.ConnectionRequest, error) {
	ids, err := r.client.ZRangeByScore(ctx, acceptedAtKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixMicro(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, redisstore.Classify(err)
	}
	return r.load(ctx, ids)
}

func (r *RedisRepository) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	req, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	req.Status = domain.StatusAccepted
	req.RespondedAt = &at

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal connection request: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, requestKey(id), data, 0)
	r.unindexPending(ctx, pipe, req)
	pipe.SAdd(ctx, acceptedKey(req.FromUserID), id)
	pipe.SAdd(ctx, acceptedKey(req.ToUserID), id)
	pipe.ZAdd(ctx, acceptedAtKey, redis.Z{Score: float64(at.UnixMicro()), Member: id})
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	req, err := r.Get(ctx, id)
	if errors.Is(err, domain.ErrRequestNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, requestKey(id))
	r.unindexPending(ctx, pipe, req)
	pipe.SRem(ctx, acceptedKey(req.FromUserID), id)
	pipe.SRem(ctx, acceptedKey(req.ToUserID), id)
	pipe.ZRem(ctx, acceptedAtKey, id)
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

func (r *RedisRepository) unindexPending(ctx context.Context, pipe redis.Pipeliner, req *domain.ConnectionRequest) {
	pipe.Del(ctx, pendingPairKey(req.FromUserID, req.ToUserID))
	pipe.ZRem(ctx, pendingToKey(req.ToUserID), req.ID)
	pipe.ZRem(ctx, pendingFromKey(req.FromUserID), req.ID)
}

func (r *RedisRepository) listByZSet(ctx context.Context, key string) ([]*domain.ConnectionRequest, error) {
	ids, err := r.client.ZRevRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, redisstore.Classify(err)
	}
	return r.load(ctx, ids)
}

// load fetches requests by id in the given order, skipping ids whose document is gone.
func (r *RedisRepository) load(ctx context.Context, ids []string) ([]*domain.ConnectionRequest, error) {
	if len(ids) == 0 {
		return []*domain.ConnectionRequest{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = requestKey(id)
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, redisstore.Classify(err)
	}

	out := make([]*domain.ConnectionRequest, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		req, err := unmarshal([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func unmarshal(data []byte) (*domain.ConnectionRequest, error) {
	var req domain.ConnectionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection request: %w", err)
	}
	return &req, nil
}
