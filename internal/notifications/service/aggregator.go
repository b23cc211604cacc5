package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	conndomain "github.com/folio-social/folio-backend/internal/connections/domain"
	"github.com/folio-social/folio-backend/internal/notifications/domain"
)

const (
	DefaultPanelLimit = 50
	maxSnippetRunes   = 140
)

// Store persists activity notifications.
type Store interface {
	Create(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, id string) (*domain.Notification, error)
	ListFor(ctx context.Context, uid string, limit int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, uid string) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, uid string) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteByPost(ctx context.Context, postID string) error
}

// PendingRequests exposes the incoming connection requests of a user.
type PendingRequests interface {
	ListPendingRequests(ctx context.Context, uid string) ([]*conndomain.ConnectionRequest, error)
	GetConnectionRequestCount(ctx context.Context, uid string) (int, error)
}

// Aggregator merges pending connection requests and activity notifications
// into one unread count and panel list.
type Aggregator struct {
	store      Store
	requests   PendingRequests
	panelLimit int
	logger     *zap.Logger
	now        func() time.Time
}

func NewAggregator(store Store, requests PendingRequests, panelLimit int, logger *zap.Logger) *Aggregator {
	if panelLimit <= 0 {
		panelLimit = DefaultPanelLimit
	}
	return &Aggregator{
		store:      store,
		requests:   requests,
		panelLimit: panelLimit,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetUnreadSummary returns pending requests (newest first) followed by the most
// recent notifications. Count is pending requests plus unread notifications.
func (a *Aggregator) GetUnreadSummary(ctx context.Context, uid string) (*domain.Summary, error) {
	var (
		pending       []*conndomain.ConnectionRequest
		notifications []*domain.Notification
		unread        int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pending, err = a.requests.ListPendingRequests(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		notifications, err = a.store.ListFor(gctx, uid, a.panelLimit)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = a.store.CountUnread(gctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(pending)+len(notifications))
	for _, req := range pending {
		items = append(items, domain.Item{Kind: domain.KindConnectionRequest, Request: req, CreatedAt: req.CreatedAt})
	}
	for _, n := range notifications {
		items = append(items, domain.Item{Kind: domain.KindNotification, Notification: n, CreatedAt: n.CreatedAt})
	}

	return &domain.Summary{Count: len(pending) + unread, Items: items}, nil
}

// UnreadCount is the lightweight count polled while the panel is closed.
func (a *Aggregator) UnreadCount(ctx context.Context, uid string) (int, error) {
	var pending, unread int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pending, err = a.requests.GetConnectionRequestCount(gctx, uid)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = a.store.CountUnread(gctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return pending + unread, nil
}

// MarkNotificationRead flags a notification of uid as read. Missing
// notifications are ignored.
func (a *Aggregator) MarkNotificationRead(ctx context.Context, uid, id string) error {
	n, err := a.owned(ctx, uid, id)
	if err != nil || n == nil || n.Read {
		return err
	}
	err = a.store.MarkRead(ctx, id)
	if errors.Is(err, domain.ErrNotificationNotFound) {
		return nil
	}
	return err
}

// DeleteNotification removes a notification of uid. Missing notifications are ignored.
func (a *Aggregator) DeleteNotification(ctx context.Context, uid, id string) error {
	n, err := a.owned(ctx, uid, id)
	if err != nil || n == nil {
		return err
	}
	return a.store.Delete(ctx, id)
}

func (a *Aggregator) MarkAllRead(ctx context.Context, uid string) (int, error) {
	return a.store.MarkAllRead(ctx, uid)
}

// Notify records a notification for a feed action. Actions on one's own
// content produce nothing.
func (a *Aggregator) Notify(ctx context.Context, ev domain.Event) error {
	if !ev.Type.Valid() || ev.ToUserID == "" || ev.FromUserID == "" {
		return domain.ErrInvalidEvent
	}
	if ev.ToUserID == ev.FromUserID {
		return nil
	}

	n := &domain.Notification{
		ToUserID:        ev.ToUserID,
		FromUserID:      ev.FromUserID,
		FromUserName:    ev.FromUserName,
		FromUserPicture: ev.FromUserPicture,
		Type:            ev.Type,
		PostID:          ev.PostID,
		CommentContent:  snippet(ev.CommentContent),
		CreatedAt:       a.now(),
	}
	if err := a.store.Create(ctx, n); err != nil {
		return err
	}
	a.logger.Debug("notification created",
		zap.String("type", string(n.Type)),
		zap.String("to", n.ToUserID),
		zap.String("id", n.ID))
	return nil
}

// ForgetPost removes notifications pointing at a deleted post.
func (a *Aggregator) ForgetPost(ctx context.Context, postID string) error {
	return a.store.DeleteByPost(ctx, postID)
}

func (a *Aggregator) owned(ctx context.Context, uid, id string) (*domain.Notification, error) {
	n, err := a.store.Get(ctx, id)
	if errors.Is(err, domain.ErrNotificationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if n.ToUserID != uid {
		return nil, domain.ErrNotRecipient
	}
	return n, nil
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= maxSnippetRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxSnippetRunes-1]) + "…"
}
