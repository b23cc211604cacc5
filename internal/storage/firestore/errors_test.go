package firestore

import (
	"context"
	"errors"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/folio-social/folio-backend/internal/apperr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", status.Error(codes.NotFound, "missing"), apperr.ErrNotFound},
		{"permission", status.Error(codes.PermissionDenied, "rules"), apperr.ErrPermissionDenied},
		{"unauthenticated", status.Error(codes.Unauthenticated, "token"), apperr.ErrPermissionDenied},
		{"unavailable", status.Error(codes.Unavailable, "offline"), apperr.ErrUnavailable},
		{"deadline", context.DeadlineExceeded, apperr.ErrUnavailable},
		{"breaker open", gobreaker.ErrOpenState, apperr.ErrUnavailable},
		{"conflict", status.Error(codes.AlreadyExists, "dup"), apperr.ErrConflict},
		{"already classified", apperr.ErrValidation, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Classify(tt.err), tt.want)
		})
	}

	assert.Nil(t, Classify(nil))
	plain := errors.New("boom")
	assert.Equal(t, plain, Classify(plain))
}

func TestBreaker_DoClassifies(t *testing.T) {
	b := NewBreaker("test-store", zap.NewNop())

	err := b.Do(func() error { return status.Error(codes.PermissionDenied, "rules") })
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	assert.True(t, apperr.IsSoft(err))

	n, err := Call(b, func() (int, error) { return 7, nil })
	assert.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestBreaker_OpensOnOutage(t *testing.T) {
	b := NewBreaker("test-outage", zap.NewNop())
	for i := 0; i < 10; i++ {
		_ = b.Do(func() error { return status.Error(codes.Unavailable, "down") })
	}

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestBreaker_NotFoundDoesNotTrip(t *testing.T) {
	b := NewBreaker("test-notfound", zap.NewNop())
	for i := 0; i < 20; i++ {
		_ = b.Do(func() error { return status.Error(codes.NotFound, "missing") })
	}
	assert.NoError(t, b.Do(func() error { return nil }))
}
