package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/folio-social/folio-backend/internal/feed/domain"
	redisstore "github.com/folio-social/folio-backend/internal/storage/redis"
)

// RedisRepository keeps posts and comments as JSON with these side keys:
//
//	post:{id}:likes     SET of user ids
//	post:{id}:stats     HASH with comments and views counters
//	post:{id}:comments  ZSET of comment ids, by createdAt
//	posts:all           ZSET of post ids, by createdAt
//	posts:user:{uid}    ZSET of uid's post ids, by createdAt
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func postKey(id string) string         { return fmt.Sprintf("post:%s", id) }
func likesKey(id string) string        { return fmt.Sprintf("post:%s:likes", id) }
func statsKey(id string) string        { return fmt.Sprintf("post:%s:stats", id) }
func postCommentsKey(id string) string { return fmt.Sprintf("post:%s:comments", id) }
func userPostsKey(uid string) string   { return fmt.Sprintf("posts:user:%s", uid) }
func commentKey(id string) string      { return fmt.Sprintf("comment:%s", id) }

const (
	allPostsKey   = "posts:all"
	statComments  = "comments"
	statViews     = "views"
	missingPostRC = -1
)

// toggleLike flips membership of ARGV[1] in the like set and returns
// {liked, likeCount}, or {-1, 0} when the post does not exist.
var toggleLike = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {-1, 0}
end
local liked = 1
if redis.call('SISMEMBER', KEYS[2], ARGV[1]) == 1 then
  redis.call('SREM', KEYS[2], ARGV[1])
  liked = 0
else
  redis.call('SADD', KEYS[2], ARGV[1])
end
return {liked, redis.call('SCARD', KEYS[2])}
`)

func (r *RedisRepository) CreatePost(ctx context.Context, p *domain.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	data, err := marshalPost(p)
	if err != nil {
		return err
	}

	score := float64(p.CreatedAt.UnixMicro())
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, postKey(p.ID), data, 0)
	pipe.ZAdd(ctx, allPostsKey, redis.Z{Score: score, Member: p.ID})
	pipe.ZAdd(ctx, userPostsKey(p.UserID), redis.Z{Score: score, Member: p.ID})
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

func (r *RedisRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	posts, err := r.loadPosts(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, domain.ErrPostNotFound
	}
	return posts[0], nil
}

// ListPosts pages through a post index. Members sharing a score come back in
// descending id order, matching the (createdAt, id) cursor.
func (r *RedisRepository) ListPosts(ctx context.Context, q domain.Query) ([]*domain.Post, error) {
	key := allPostsKey
	if q.UserID != "" {
		key = userPostsKey(q.UserID)
	}
	if q.Before.IsZero() {
		ids, err := r.client.ZRevRange(ctx, key, 0, int64(q.Limit)-1).Result()
		if err != nil {
			return nil, redisstore.Classify(err)
		}
		return r.loadPosts(ctx, ids)
	}

	score := q.Before.UnixMicro()
	maxScore := strconv.FormatInt(score, 10)
	if q.BeforeID == "" {
		maxScore = "(" + maxScore
	}

	ids := make([]string, 0, q.Limit)
	for offset := int64(0); len(ids) < q.Limit; {
		batch, err := r.client.ZRevRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{
			Min:    "-inf",
			Max:    maxScore,
			Offset: offset,
			Count:  int64(q.Limit),
		}).Result()
		if err != nil {
			return nil, redisstore.Classify(err)
		}
		for _, z := range batch {
			id, _ := z.Member.(string)
			if int64(z.Score) == score && id >= q.BeforeID {
				continue
			}
			ids = append(ids, id)
			if len(ids) == q.Limit {
				break
			}
		}
		if len(batch) < q.Limit {
			break
		}
		offset += int64(len(batch))
	}
	return r.loadPosts(ctx, ids)
}

func (r *RedisRepository) DeletePost(ctx context.Context, id string) error {
	p, err := r.GetPost(ctx, id)
	if errors.Is(err, domain.ErrPostNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	commentIDs, err := r.client.ZRange(ctx, postCommentsKey(id), 0, -1).Result()
	if err != nil {
		return redisstore.Classify(err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, postKey(id), likesKey(id), statsKey(id), postCommentsKey(id))
	for _, cid := range commentIDs {
		pipe.Del(ctx, commentKey(cid))
	}
	pipe.ZRem(ctx, allPostsKey, id)
	pipe.ZRem(ctx, userPostsKey(p.UserID), id)
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

func (r *RedisRepository) ToggleLike(ctx context.Context, postID, uid string) (domain.LikeResult, error) {
	res, err := toggleLike.Run(ctx, r.client, []string{postKey(postID), likesKey(postID)}, uid).Int64Slice()
	if err != nil {
		return domain.LikeResult{}, redisstore.Classify(err)
	}
	if len(res) != 2 {
		return domain.LikeResult{}, fmt.Errorf("unexpected toggle result %v", res)
	}
	if res[0] == missingPostRC {
		return domain.LikeResult{}, domain.ErrPostNotFound
	}
	return domain.LikeResult{Liked: res[0] == 1, LikeCount: int(res[1])}, nil
}

func (r *RedisRepository) IncrementViews(ctx context.Context, postID string) error {
	n, err := r.client.Exists(ctx, postKey(postID)).Result()
	if err != nil {
		return redisstore.Classify(err)
	}
	if n == 0 {
		return domain.ErrPostNotFound
	}
	return redisstore.Classify(r.client.HIncrBy(ctx, statsKey(postID), statViews, 1).Err())
}

func (r *RedisRepository) CreateComment(ctx context.Context, c *domain.Comment) error {
	n, err := r.client.Exists(ctx, postKey(c.PostID)).Result()
	if err != nil {
		return redisstore.Classify(err)
	}
	if n == 0 {
		return domain.ErrPostNotFound
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal comment: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, commentKey(c.ID), data, 0)
	pipe.ZAdd(ctx, postCommentsKey(c.PostID), redis.Z{Score: float64(c.CreatedAt.UnixMicro()), Member: c.ID})
	pipe.HIncrBy(ctx, statsKey(c.PostID), statComments, 1)
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

func (r *RedisRepository) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	data, err := r.client.Get(ctx, commentKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, redisstore.Classify(err)
	}
	return unmarshalComment(data)
}

func (r *RedisRepository) ListComments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	ids, err := r.client.ZRange(ctx, postCommentsKey(postID), 0, -1).Result()
	if err != nil {
		return nil, redisstore.Classify(err)
	}
	return r.loadComments(ctx, ids)
}

func (r *RedisRepository) DeleteComments(ctx context.Context, postID string, ids []string) error {
	existing, err := r.loadComments(ctx, ids)
	if err != nil || len(existing) == 0 {
		return err
	}
	postExists, err := r.client.Exists(ctx, postKey(postID)).Result()
	if err != nil {
		return redisstore.Classify(err)
	}

	pipe := r.client.TxPipeline()
	for _, c := range existing {
		pipe.Del(ctx, commentKey(c.ID))
		pipe.ZRem(ctx, postCommentsKey(postID), c.ID)
	}
	if postExists == 1 {
		pipe.HIncrBy(ctx, statsKey(postID), statComments, -int64(len(existing)))
	}
	_, err = pipe.Exec(ctx)
	return redisstore.Classify(err)
}

// loadPosts fetches posts in the given order with their likes and counters,
// skipping ids whose document is gone.
func (r *RedisRepository) loadPosts(ctx context.Context, ids []string) ([]*domain.Post, error) {
	if len(ids) == 0 {
		return []*domain.Post{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = postKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, redisstore.Classify(err)
	}

	posts := make([]*domain.Post, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var p domain.Post
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal post: %w", err)
		}
		posts = append(posts, &p)
	}
	if len(posts) == 0 {
		return posts, nil
	}

	pipe := r.client.Pipeline()
	likes := make([]*redis.StringSliceCmd, len(posts))
	stats := make([]*redis.MapStringStringCmd, len(posts))
	for i, p := range posts {
		likes[i] = pipe.SMembers(ctx, likesKey(p.ID))
		stats[i] = pipe.HGetAll(ctx, statsKey(p.ID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, redisstore.Classify(err)
	}

	for i, p := range posts {
		p.Likes = likes[i].Val()
		if p.Likes == nil {
			p.Likes = []string{}
		}
		p.LikeCount = len(p.Likes)
		s := stats[i].Val()
		p.CommentCount, _ = strconv.Atoi(s[statComments])
		p.ViewCount, _ = strconv.Atoi(s[statViews])
	}
	return posts, nil
}

func (r *RedisRepository) loadComments(ctx context.Context, ids []string) ([]*domain.Comment, error) {
	if len(ids) == 0 {
		return []*domain.Comment{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = commentKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, redisstore.Classify(err)
	}

	out := make([]*domain.Comment, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		c, err := unmarshalComment([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// marshalPost encodes the static part of a post; likes and counters live in
// their own keys.
func marshalPost(p *domain.Post) ([]byte, error) {
	static := *p
	static.Likes = nil
	static.LikeCount, static.CommentCount, static.ViewCount = 0, 0, 0
	static.LikedByMe = false
	data, err := json.Marshal(static)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}
	return data, nil
}

func unmarshalComment(data []byte) (*domain.Comment, error) {
	var c domain.Comment
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comment: %w", err)
	}
	return &c, nil
}
