package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	authdomain "github.com/folio-social/folio-backend/internal/auth/domain"
	"github.com/folio-social/folio-backend/internal/feed/domain"
	notifydomain "github.com/folio-social/folio-backend/internal/notifications/domain"
	profiledomain "github.com/folio-social/folio-backend/internal/profiles/domain"
)

// Store persists posts and comments.
type Store interface {
	CreatePost(ctx context.Context, p *domain.Post) error
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	ListPosts(ctx context.Context, q domain.Query) ([]*domain.Post, error)
	DeletePost(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, uid string) (domain.LikeResult, error)
	IncrementViews(ctx context.Context, postID string) error
	CreateComment(ctx context.Context, c *domain.Comment) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	ListComments(ctx context.Context, postID string) ([]*domain.Comment, error)
	DeleteComments(ctx context.Context, postID string, ids []string) error
}

// Notifier receives feed side effects.
type Notifier interface {
	Notify(ctx context.Context, ev notifydomain.Event) error
	ForgetPost(ctx context.Context, postID string) error
}

// ProfileReader supplies author display fields.
type ProfileReader interface {
	GetProfile(ctx context.Context, uid string) (*profiledomain.Profile, error)
}

type FeedService struct {
	store    Store
	notifier Notifier
	profiles ProfileReader
	logger   *zap.Logger
	now      func() time.Time
}

func NewFeedService(store Store, notifier Notifier, profiles ProfileReader, logger *zap.Logger) *FeedService {
	return &FeedService{
		store:    store,
		notifier: notifier,
		profiles: profiles,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *FeedService) CreatePost(ctx context.Context, author authdomain.Identity, in domain.NewPost) (*domain.Post, error) {
	content, err := cleanText(in.Content, domain.MaxPostRunes)
	if err != nil {
		return nil, err
	}
	if content == "" && in.ImageURL == "" {
		return nil, domain.ErrEmptyPost
	}
	if !validImageURL(in.ImageURL) {
		return nil, domain.ErrInvalidImageURL
	}

	name, picture := s.displayFields(ctx, author)
	p := &domain.Post{
		UserID:      author.UID,
		UserName:    name,
		UserPicture: picture,
		Content:     content,
		ImageURL:    in.ImageURL,
		Likes:       []string{},
		CreatedAt:   s.now(),
	}
	if err := s.store.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *FeedService) GetPost(ctx context.Context, viewerUID, id string) (*domain.Post, error) {
	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	p.LikedByMe = p.LikedBy(viewerUID)
	return p, nil
}

// ListPosts returns one page of the feed. A full page carries a cursor for
// the next one.
func (s *FeedService) ListPosts(ctx context.Context, viewerUID string, q domain.Query) (*domain.Page, error) {
	if q.Limit == 0 {
		q.Limit = domain.DefaultPageSize
	}
	if q.Limit < 1 || q.Limit > domain.MaxPageSize {
		return nil, domain.ErrInvalidLimit
	}

	posts, err := s.store.ListPosts(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.LikedByMe = p.LikedBy(viewerUID)
	}

	page := &domain.Page{Posts: posts}
	if len(posts) == q.Limit {
		page.NextCursor = domain.EncodeCursor(posts[len(posts)-1])
	}
	return page, nil
}

// DeletePost removes a post with its comments. Only the author or an admin may.
func (s *FeedService) DeletePost(ctx context.Context, caller authdomain.Identity, id string) error {
	p, err := s.store.GetPost(ctx, id)
	if errors.Is(err, domain.ErrPostNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if p.UserID != caller.UID && !caller.Admin {
		return domain.ErrNotAuthor
	}

	if err := s.store.DeletePost(ctx, id); err != nil {
		return err
	}
	if err := s.notifier.ForgetPost(ctx, id); err != nil {
		s.logger.Warn("failed to clear notifications of deleted post", zap.String("post_id", id), zap.Error(err))
	}
	return nil
}

// ToggleLike likes or unlikes a post. A new like notifies the author.
func (s *FeedService) ToggleLike(ctx context.Context, actor authdomain.Identity, postID string) (domain.LikeResult, error) {
	p, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return domain.LikeResult{}, err
	}
	res, err := s.store.ToggleLike(ctx, postID, actor.UID)
	if err != nil {
		return domain.LikeResult{}, err
	}

	if res.Liked {
		name, picture := s.displayFields(ctx, actor)
		s.notify(ctx, notifydomain.Event{
			Type:            notifydomain.TypePostLike,
			ToUserID:        p.UserID,
			FromUserID:      actor.UID,
			FromUserName:    name,
			FromUserPicture: picture,
			PostID:          postID,
		})
	}
	return res, nil
}

// RecordView bumps the view counter. Failures are logged and dropped.
func (s *FeedService) RecordView(ctx context.Context, postID string) {
	if err := s.store.IncrementViews(ctx, postID); err != nil {
		s.logger.Debug("view not recorded", zap.String("post_id", postID), zap.Error(err))
	}
}

func (s *FeedService) displayFields(ctx context.Context, id authdomain.Identity) (string, string) {
	name, picture := id.DisplayName, id.PhotoURL
	p, err := s.profiles.GetProfile(ctx, id.UID)
	if err != nil {
		s.logger.Debug("author profile unavailable", zap.String("uid", id.UID), zap.Error(err))
	}
	if p != nil {
		if p.ProfileName != "" {
			name = p.ProfileName
		}
		if p.ProfilePicture != "" {
			picture = p.ProfilePicture
		}
	}
	if name == "" {
		name = "Anonymous"
	}
	return name, picture
}

func (s *FeedService) notify(ctx context.Context, ev notifydomain.Event) {
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.logger.Warn("notification not delivered",
			zap.String("type", string(ev.Type)),
			zap.String("to", ev.ToUserID),
			zap.Error(err))
	}
}
