package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/metrics"
	"github.com/folio-social/folio-backend/internal/notifications/domain"
)

const DefaultPollInterval = 30 * time.Second

// Source is what a Watcher polls.
type Source interface {
	UnreadCount(ctx context.Context, uid string) (int, error)
	GetUnreadSummary(ctx context.Context, uid string) (*domain.Summary, error)
}

// Snapshot is the watcher's last good view. Items are only refreshed while
// the panel is open.
type Snapshot struct {
	Count     int           `json:"count"`
	Items     []domain.Item `json:"items"`
	PanelOpen bool          `json:"panelOpen"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Watcher polls the unread state of one user. While the panel is closed only
// the count is fetched; opening it triggers an immediate full refresh. Failed
// polls keep the previous snapshot.
type Watcher struct {
	source   Source
	uid      string
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	open bool
	last Snapshot
	wake chan struct{}
}

func NewWatcher(source Source, uid string, interval time.Duration, logger *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		source:   source,
		uid:      uid,
		interval: interval,
		logger:   logger.With(zap.String("uid", uid)),
		last:     Snapshot{Items: []domain.Item{}},
		wake:     make(chan struct{}, 1),
	}
}

// SetPanelOpen records the panel state. Opening wakes Run for an immediate refresh.
func (w *Watcher) SetPanelOpen(open bool) {
	w.mu.Lock()
	w.open = open
	w.mu.Unlock()
	if open {
		w.Poke()
	}
}

// Poke asks Run to refresh now.
func (w *Watcher) Poke() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Watcher) Last() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Refresh polls once according to the panel state and reports whether the
// snapshot was updated.
func (w *Watcher) Refresh(ctx context.Context) bool {
	w.mu.Lock()
	open := w.open
	w.mu.Unlock()

	next := Snapshot{PanelOpen: open}
	if open {
		summary, err := w.source.GetUnreadSummary(ctx, w.uid)
		if err != nil {
			w.failed(ctx, err)
			return false
		}
		next.Count = summary.Count
		next.Items = summary.Items
	} else {
		count, err := w.source.UnreadCount(ctx, w.uid)
		if err != nil {
			w.failed(ctx, err)
			return false
		}
		next.Count = count
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if next.Items == nil {
		next.Items = w.last.Items
	}
	next.PanelOpen = w.open
	next.UpdatedAt = time.Now().UTC()
	w.last = next
	return true
}

// Run refreshes on every tick and wake-up and hands each new snapshot to
// publish. It returns when ctx is done or publish fails.
func (w *Watcher) Run(ctx context.Context, publish func(Snapshot) error) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if w.Refresh(ctx) {
			if err := publish(w.Last()); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-w.wake:
		}
	}
}

func (w *Watcher) failed(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	metrics.NotificationPollFailures.Inc()
	w.logger.Warn("notification poll failed", zap.Error(err))
}
