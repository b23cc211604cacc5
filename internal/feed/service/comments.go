package service

import (
	"context"
	"errors"

	authdomain "github.com/folio-social/folio-backend/internal/auth/domain"
	"github.com/folio-social/folio-backend/internal/feed/domain"
	notifydomain "github.com/folio-social/folio-backend/internal/notifications/domain"
)

// AddComment comments on a post. Replies to replies attach to the top-level
// ancestor. The post author and the replied-to author are notified.
func (s *FeedService) AddComment(ctx context.Context, actor authdomain.Identity, postID string, in domain.NewComment) (*domain.Comment, error) {
	content, err := cleanText(in.Content, domain.MaxCommentRunes)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, domain.ErrEmptyComment
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	var parent, repliedTo *domain.Comment
	if in.ParentCommentID != "" {
		parent, err = s.store.GetComment(ctx, in.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, domain.ErrCommentNotFound
		}
		repliedTo = parent
		if parent.IsReply() {
			if top, err := s.store.GetComment(ctx, parent.ParentCommentID); err == nil {
				parent = top
			} else if !errors.Is(err, domain.ErrCommentNotFound) {
				return nil, err
			}
		}
	}

	name, picture := s.displayFields(ctx, actor)
	c := &domain.Comment{
		PostID:      postID,
		UserID:      actor.UID,
		UserName:    name,
		UserPicture: picture,
		Content:     content,
		CreatedAt:   s.now(),
	}
	if parent != nil && !parent.IsReply() {
		c.ParentCommentID = parent.ID
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	ev := notifydomain.Event{
		Type:            notifydomain.TypeCommentReply,
		FromUserID:      actor.UID,
		FromUserName:    name,
		FromUserPicture: picture,
		PostID:          postID,
		CommentContent:  content,
	}
	ev.ToUserID = post.UserID
	s.notify(ctx, ev)
	if repliedTo != nil && repliedTo.UserID != post.UserID {
		ev.ToUserID = repliedTo.UserID
		s.notify(ctx, ev)
	}
	return c, nil
}

// ListComments returns the post's comments as top-level threads, oldest first.
// Replies whose parent is gone are shown as top-level comments.
func (s *FeedService) ListComments(ctx context.Context, postID string) ([]*domain.Thread, error) {
	comments, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Thread, len(comments))
	threads := make([]*domain.Thread, 0, len(comments))
	for _, c := range comments {
		if !c.IsReply() {
			t := &domain.Thread{Comment: c, Replies: []*domain.Comment{}}
			byID[c.ID] = t
			threads = append(threads, t)
		}
	}
	for _, c := range comments {
		if !c.IsReply() {
			continue
		}
		if t, ok := byID[c.ParentCommentID]; ok {
			t.Replies = append(t.Replies, c)
			continue
		}
		threads = append(threads, &domain.Thread{Comment: c, Replies: []*domain.Comment{}})
	}
	return threads, nil
}

// DeleteComment removes a comment, and its replies when it is top-level. The
// comment author, the post author or an admin may delete.
func (s *FeedService) DeleteComment(ctx context.Context, caller authdomain.Identity, commentID string) error {
	c, err := s.store.GetComment(ctx, commentID)
	if errors.Is(err, domain.ErrCommentNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if c.UserID != caller.UID && !caller.Admin {
		post, err := s.store.GetPost(ctx, c.PostID)
		if err != nil && !errors.Is(err, domain.ErrPostNotFound) {
			return err
		}
		if post == nil || post.UserID != caller.UID {
			return domain.ErrNotAuthor
		}
	}

	ids := []string{c.ID}
	if !c.IsReply() {
		all, err := s.store.ListComments(ctx, c.PostID)
		if err != nil {
			return err
		}
		for _, other := range all {
			if other.ParentCommentID == c.ID {
				ids = append(ids, other.ID)
			}
		}
	}
	return s.store.DeleteComments(ctx, c.PostID, ids)
}
