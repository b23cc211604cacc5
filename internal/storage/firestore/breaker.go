package firestore

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/apperr"
	"github.com/folio-social/folio-backend/internal/metrics"
)

// Breaker guards document store calls. Only transport-level failures count
// against it; not-found and permission errors are answers, not outages.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger *zap.Logger
}

func NewBreaker(name string, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.StoreBreakerState.WithLabelValues(name).Set(0)

	b := &Breaker{name: name, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(Classify(err), apperr.ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.StoreBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return b
}

// Do runs fn through the breaker and returns its error classified into the
// apperr taxonomy.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return b.classify(err)
}

// Call is Do for functions that return a value.
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		return zero, b.classify(err)
	}
	typed, ok := res.(T)
	if !ok {
		return zero, nil
	}
	return typed, nil
}

func (b *Breaker) classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.StoreBreakerRejections.WithLabelValues(b.name).Inc()
	}
	return Classify(err)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
