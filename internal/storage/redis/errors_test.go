package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-social/folio-backend/config"
	"github.com/folio-social/folio-backend/internal/apperr"
)

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))
	assert.ErrorIs(t, Classify(redis.Nil), apperr.ErrNotFound)
	assert.ErrorIs(t, Classify(redis.ErrClosed), apperr.ErrUnavailable)
	assert.ErrorIs(t, Classify(context.DeadlineExceeded), apperr.ErrUnavailable)

	plain := errors.New("WRONGTYPE")
	assert.Equal(t, plain, Classify(plain))
}

func TestClassify_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	mr.Close()
	err := client.Get(context.Background(), "k").Err()
	require.Error(t, err)
	assert.ErrorIs(t, Classify(err), apperr.ErrUnavailable)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), &config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	_, err = NewClient(context.Background(), &config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
