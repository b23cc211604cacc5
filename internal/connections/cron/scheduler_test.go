package cronjob

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/connections/domain"
)

type fakeSweeper struct {
	since  time.Time
	result domain.SyncResult
	err    error
}

func (f *fakeSweeper) SweepAccepted(_ context.Context, since time.Time) (domain.SyncResult, error) {
	f.since = since
	return f.result, f.err
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler(&fakeSweeper{}, "every tuesday", time.Hour, zap.NewNop())
	assert.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	sweeper := &fakeSweeper{result: domain.SyncResult{Users: 4, Repairs: 1}}
	s, err := NewScheduler(sweeper, "0 */15 * * * *", 24*time.Hour, zap.NewNop())
	require.NoError(t, err)

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Repairs)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), sweeper.since, time.Minute)

	sweeper.err = errors.New("store offline")
	_, err = s.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(&fakeSweeper{}, "@every 1h", time.Hour, zap.NewNop())
	require.NoError(t, err)
	s.Start()
	<-s.Stop().Done()
}
