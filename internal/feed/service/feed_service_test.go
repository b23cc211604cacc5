package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	authdomain "github.com/folio-social/folio-backend/internal/auth/domain"
	connrepo "github.com/folio-social/folio-backend/internal/connections/repository"
	connservice "github.com/folio-social/folio-backend/internal/connections/service"
	"github.com/folio-social/folio-backend/internal/feed/domain"
	"github.com/folio-social/folio-backend/internal/feed/repository"
	notifyrepo "github.com/folio-social/folio-backend/internal/notifications/repository"
	notifyservice "github.com/folio-social/folio-backend/internal/notifications/service"
	profilecache "github.com/folio-social/folio-backend/internal/profiles/cache"
	profiledomain "github.com/folio-social/folio-backend/internal/profiles/domain"
	profilerepo "github.com/folio-social/folio-backend/internal/profiles/repository"
	profileservice "github.com/folio-social/folio-backend/internal/profiles/service"
)

var (
	author = authdomain.Identity{UID: "author", DisplayName: "Author Token Name"}
	fan    = authdomain.Identity{UID: "fan", DisplayName: "Fan"}
	critic = authdomain.Identity{UID: "critic", DisplayName: "Critic"}
	admin  = authdomain.Identity{UID: "mod", DisplayName: "Mod", Admin: true}
)

type feedEnv struct {
	svc    *FeedService
	notify *notifyservice.Aggregator
}

func setupFeed(t *testing.T) *feedEnv {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	profileStore := profilerepo.NewRedisRepository(client)
	p := profiledomain.NewProfile(author.UID, "", "Author Profile Name", "https://img/author.png", time.Now())
	require.NoError(t, profileStore.Save(context.Background(), p))
	profiles := profileservice.NewProfileService(profileStore, profilecache.NewRedisCache(client, time.Hour), zap.NewNop())

	conns := connservice.NewConnectionService(connrepo.NewRedisRepository(client), profileStore, zap.NewNop())
	agg := notifyservice.NewAggregator(notifyrepo.NewRedisRepository(client), conns, 50, zap.NewNop())

	svc := NewFeedService(repository.NewRedisRepository(client), agg, profiles, zap.NewNop())
	clock := time.Now().UTC()
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return &feedEnv{svc: svc, notify: agg}
}

func (e *feedEnv) unread(t *testing.T, uid string) int {
	t.Helper()
	n, err := e.notify.UnreadCount(context.Background(), uid)
	require.NoError(t, err)
	return n
}

func TestCreatePost(t *testing.T) {
	env := setupFeed(t)
	ctx := context.Background()

	p, err := env.svc.CreatePost(ctx, author, domain.NewPost{Content: "  <b>Hello</b> & world  "})
	require.NoError(t, err)
	assert.Equal(t, "Hello & world", p.Content)
	assert.Equal(t, "Author Profile Name", p.UserName)
	assert.Equal(t, "https://img/author.png", p.UserPicture)

	p, err = env.svc.CreatePost(ctx, fan, domain.NewPost{ImageURL: "data:image/gif;base64,R0lGOD"})
	require.NoError(t, err)
	assert.Equal(t, "Fan", p.UserName)

	_, err = env.svc.CreatePost(ctx, author, domain.NewPost{Content: "<i></i>  "})
	assert.ErrorIs(t, err, domain.ErrEmptyPost)
	_, err = env.svc.CreatePost(ctx, author, domain.NewPost{Content: "x", ImageURL: "javascript:alert(1)"})
	assert.ErrorIs(t, err, domain.ErrInvalidImageURL)
	_, err = env.svc.CreatePost(ctx, author, domain.NewPost{Content: strings.Repeat("a", domain.MaxPostRunes+1)})
	assert.ErrorIs(t, err, domain.ErrContentTooLong)
}

func TestListPosts_Pagination(t *testing.T) {
	env := setupFeed(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := env.svc.CreatePost(ctx, author, domain.NewPost{Content: "post"})
		require.NoError(t, err)
	}

	page, err := env.svc.ListPosts(ctx, fan.UID, domain.Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Posts, 2)
	require.NotEmpty(t, page.NextCursor)

	seen := map[string]bool{page.Posts[0].ID: true, page.Posts[1].ID: true}
	for page.NextCursor != "" {
		q := domain.Query{Limit: 2}
		require.NoError(t, domain.ParseCursor(page.NextCursor, &q))
		page, err = env.svc.ListPosts(ctx, fan.UID, q)
		require.NoError(t, err)
		for _, p := range page.Posts {
			assert.False(t, seen[p.ID], "post %s returned twice", p.ID)
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, 5)

	_, err = env.svc.ListPosts(ctx, fan.UID, domain.Query{Limit: 51})
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
	_, err = env.svc.ListPosts(ctx, fan.UID, domain.Query{Limit: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)

	page, err = env.svc.ListPosts(ctx, fan.UID, domain.Query{UserID: fan.UID})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Empty(t, page.NextCursor)
}

func TestListPosts_TiedTimestamps(t *testing.T) {
	env := setupFeed(t)
	ctx := context.Background()

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return fixed }
	for i := 0; i < 3; i++ {
		_, err := env.svc.CreatePost(ctx, author, domain.NewPost{Content: "same instant"})
		require.NoError(t, err)
	}
	env.svc.now = func() time.Time { return fixed.Add(-time.Second) }
	older, err := env.svc.CreatePost(ctx, author, domain.NewPost{Content: "older"})
	require.NoError(t, err)

	var order []string
	q := domain.Query{Limit: 1}
	for {
		page, err := env.svc.ListPosts(ctx, fan.UID, q)
		require.NoError(t, err)
		for _, p := range page.Posts {
			order = append(order, p.ID)
		}
		if page.NextCursor == "" {
			break
		}
		q = domain.Query{Limit: 1}
		require.NoError(t, domain.ParseCursor(page.NextCursor, &q))
	}

	require.Len(t, order, 4)
	assert.Equal(t, older.ID, order[3])
	seen := map[string]bool{}
	for _, id := range order {
		assert.False(t, seen[id], "post %s returned twice", id)
		seen[id] = true
	}
}

func TestToggleLike_NotifiesAuthor(t *testing.T) {
	env := setupFeed(t)
	ctx := context.Background()

	p, err := env.svc.CreatePost(ctx, author, domain.NewPost{Content: "like me"})
	require.NoError(t, err)

	res, err := env.svc.ToggleLike(ctx, author, p.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Zero(t, env.unread(t, author.UID))

	res, err = env.svc.ToggleLike(ctx, fan, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LikeResult{Liked: true, LikeCount: 2}, res)
	assert.Equal(t, 1, env.unread(t, author.UID))

	got, err := env.svc.GetPost(ctx, fan.UID, p.ID)
	require.NoError(t, err)
	assert.True(t, got.LikedByMe)

	res, err = env.svc.ToggleLike(ctx, fan, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LikeResult{Liked: false, LikeCount: 1}, res)
	assert.Equal(t, 1, env.unread(t, author.UID))

	_, err = env.svc.ToggleLike(ctx, fan, "missing")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestRecordView(t *testing.T) {
	env := setupFeed(t)
	ctx := context.Background()

	p, err := env.svc.CreatePost(ctx, author, domain.NewPost{Content: "views"})
	require.NoError(t, err)

	env.svc.RecordView(ctx, p.ID)
	env.svc.RecordView(ctx, p.ID)
	env.svc.RecordView(ctx, "missing")

	got, err := env.svc.GetPost(ctx, fan.UID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount)
}

func TestComments_Threading(t *testing.T) {
	env := setupFeed(t)
	ctx := context.Background()

	p, err := env.svc.CreatePost(ctx, author, domain.NewPost{Content: "discuss"})
	require.NoError(t, err)

	top, err := env.svc.AddComment(ctx, fan, p.ID, domain.NewComment{Content: "great"})
	require.NoError(t, err)
	assert.Equal(t, 1, env.unread(t, author.UID))

	reply, err := env.svc.AddComment(ctx, critic, p.ID, domain.NewComment{Content: "disagree", ParentCommentID: top.ID})
	require.NoError(t, err)
	assert.Equal(t, top.ID, reply.ParentCommentID)
	assert.Equal(t, 2, env.unread(t, author.UID))
	assert.Equal(t, 1, env.unread(t, fan.UID))

	nested, err := env.svc.AddComment(ctx, fan, p.ID, domain.NewComment{Content: "why?", ParentCommentID: reply.ID})
	require.NoError(t, err)
	assert.Equal(t, top.ID, nested.ParentCommentID)
	assert.Equal(t, 1, env.unread(t, critic.UID))

	_, err = env.svc.AddComment(ctx, fan, p.ID, domain.NewComment{Content: "   "})
	assert.ErrorIs(t, err, domain.ErrEmptyComment)
	_, err = env.svc.AddComment(ctx, fan, p.ID, domain.NewComment{Content: "x", ParentCommentID: "missing"})
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)

	threads, err := env.svc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, top.ID, threads[0].ID)
	require.Len(t, threads[0].Replies, 2)
	assert.Equal(t, reply.ID, threads[0].Replies[0].ID)
	assert.Equal(t, nested.ID, threads[0].Replies[1].ID)

	got, err := env.svc.GetPost(ctx, author.UID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CommentCount)
}

func TestDeleteComment(t *testing.T) {
	env := setupFeed(t)
	ctx := context.Background()

	p, err := env.svc.CreatePost(ctx, author, domain.NewPost{Content: "discuss"})
	require.NoError(t, err)
	top, err := env.svc.AddComment(ctx, fan, p.ID, domain.NewComment{Content: "first"})
	require.NoError(t, err)
	_, err = env.svc.AddComment(ctx, critic, p.ID, domain.NewComment{Content: "reply", ParentCommentID: top.ID})
	require.NoError(t, err)
	other, err := env.svc.AddComment(ctx, critic, p.ID, domain.NewComment{Content: "second"})
	require.NoError(t, err)

	assert.ErrorIs(t, env.svc.DeleteComment(ctx, critic, top.ID), domain.ErrNotAuthor)

	require.NoError(t, env.svc.DeleteComment(ctx, author, top.ID))
	require.NoError(t, env.svc.DeleteComment(ctx, author, top.ID))

	threads, err := env.svc.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, other.ID, threads[0].ID)

	got, err := env.svc.GetPost(ctx, author.UID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentCount)

	require.NoError(t, env.svc.DeleteComment(ctx, admin, other.ID))
	got, err = env.svc.GetPost(ctx, author.UID, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CommentCount)
}

func TestDeletePost(t *testing.T) {
	env := setupFeed(t)
	ctx := context.Background()

	p, err := env.svc.CreatePost(ctx, author, domain.NewPost{Content: "bye"})
	require.NoError(t, err)
	_, err = env.svc.ToggleLike(ctx, fan, p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, env.unread(t, author.UID))

	assert.ErrorIs(t, env.svc.DeletePost(ctx, fan, p.ID), domain.ErrNotAuthor)

	require.NoError(t, env.svc.DeletePost(ctx, author, p.ID))
	require.NoError(t, env.svc.DeletePost(ctx, author, p.ID))

	_, err = env.svc.GetPost(ctx, author.UID, p.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.Zero(t, env.unread(t, author.UID))
}
