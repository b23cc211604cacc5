package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/auth/domain"
	"github.com/folio-social/folio-backend/internal/auth/repository"
)

func TestAuthService_SyncUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewAuthService(repository.NewUserRepository(db), zap.NewNop())

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("uid-1", "uid-1@firebase.local", "Alex", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectExec(`UPDATE users SET last_login_at`).
		WithArgs("uid-1").
		WillReturnError(assert.AnError)

	user, err := svc.SyncUser(context.Background(), domain.Identity{UID: "uid-1", DisplayName: "Alex"})
	require.NoError(t, err, "login stamp failures are not fatal")
	assert.Equal(t, "uid-1@firebase.local", user.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_WithoutDirectory(t *testing.T) {
	svc := NewAuthService(nil, zap.NewNop())
	ctx := context.Background()

	assert.False(t, svc.DirectoryEnabled())

	user, err := svc.SyncUser(ctx, domain.Identity{UID: "uid-1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)

	_, err = svc.GetUserByFirebaseUID(ctx, "uid-1")
	assert.ErrorIs(t, err, domain.ErrDirectoryDisabled)

	_, err = svc.Search(ctx, "uid-1", "sam")
	assert.ErrorIs(t, err, domain.ErrDirectoryDisabled)

	_, err = svc.Search(ctx, "uid-1", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestAuthService_SearchExcludesCaller(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := NewAuthService(repository.NewUserRepository(db), zap.NewNop())
	now := time.Now()
	cols := []string{"firebase_uid", "email", "display_name", "photo_url", "created_at", "updated_at", "last_login_at"}

	mock.ExpectQuery(`SELECT .* FROM users`).
		WithArgs("%al%", maxSearchResults+1).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("me", "al@example.com", "Al", nil, now, now, nil).
			AddRow("other", "alma@example.com", "Alma", nil, now, now, nil))

	users, err := svc.Search(context.Background(), "me", "al")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "other", users[0].FirebaseUID)
}
