package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/connections/domain"
)

// Sweeper reconciles connection mirrors for recently accepted requests.
type Sweeper interface {
	SweepAccepted(ctx context.Context, since time.Time) (domain.SyncResult, error)
}

// Scheduler runs the reconciliation sweep on a cron schedule (with seconds).
// Overlapping runs are skipped.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	lookback time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

func NewScheduler(sweeper Sweeper, schedule string, lookback time.Duration, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		sweeper:  sweeper,
		lookback: lookback,
		timeout:  5 * time.Minute,
		logger:   logger,
	}
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("connection sync scheduler started", zap.Duration("lookback", s.lookback))
	s.cron.Start()
}

// Stop stops scheduling and returns a context that is done once a running sweep finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce sweeps requests accepted within the lookback window.
func (s *Scheduler) RunOnce(ctx context.Context) (domain.SyncResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	since := started.Add(-s.lookback)
	result, err := s.sweeper.SweepAccepted(ctx, since)
	fields := []zap.Field{
		zap.Time("since", since),
		zap.Int("users", result.Users),
		zap.Int("repairs", result.Repairs),
		zap.Duration("took", time.Since(started)),
	}
	if err != nil {
		s.logger.Error("connection sync sweep failed", append(fields, zap.Error(err))...)
		return result, err
	}
	s.logger.Info("connection sync sweep completed", fields...)
	return result, nil
}
