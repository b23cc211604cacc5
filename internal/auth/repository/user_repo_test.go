package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-social/folio-backend/internal/auth/domain"
)

var userCols = []string{"firebase_uid", "email", "display_name", "photo_url", "created_at", "updated_at", "last_login_at"}

func setupUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewUserRepository(db), mock, db
}

func TestUserRepository_GetByFirebaseUID(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()
	ctx := context.Background()
	now := time.Now()

	t.Run("found with nullable fields", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM users WHERE firebase_uid = \$1`).
			WithArgs("uid-1").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("uid-1", "alex@example.com", "Alex", nil, now, now, nil))

		user, err := repo.GetByFirebaseUID(ctx, "uid-1")
		require.NoError(t, err)
		assert.Equal(t, "alex@example.com", user.Email)
		require.NotNil(t, user.DisplayName)
		assert.Equal(t, "Alex", *user.DisplayName)
		assert.Nil(t, user.PhotoURL)
		assert.Nil(t, user.LastLoginAt)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM users`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByFirebaseUID(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Upsert(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()

	name := "Alex"
	user := &domain.User{FirebaseUID: "uid-1", Email: "alex@example.com", DisplayName: &name}

	mock.ExpectQuery(`INSERT INTO users .* ON CONFLICT \(firebase_uid\) DO UPDATE`).
		WithArgs("uid-1", "alex@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	require.NoError(t, repo.Upsert(context.Background(), user))
	assert.False(t, user.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET last_login_at`).
		WithArgs("uid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateLastLogin(ctx, "uid-1"))

	mock.ExpectExec(`UPDATE users SET last_login_at`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, "ghost"), domain.ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SearchByName(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users\s+WHERE display_name ILIKE \$1 OR email ILIKE \$1`).
		WithArgs(`%50\% off%`, 5).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("uid-2", "sam@example.com", "Sam", "https://img/sam.png", now, now, now))

	users, err := repo.SearchByName(context.Background(), " 50% off ", 5)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "uid-2", users[0].FirebaseUID)
	require.NotNil(t, users[0].LastLoginAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByFirebaseUIDs(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()
	now := time.Now()

	users, err := repo.GetByFirebaseUIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)

	mock.ExpectQuery(`SELECT .* FROM users WHERE firebase_uid = ANY\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("a", "a@example.com", nil, nil, now, now, nil).
			AddRow("b", "b@example.com", "Bea", nil, now, now, nil))

	users, err = repo.GetByFirebaseUIDs(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Name())
	assert.Equal(t, "Bea", users[1].Name())
	require.NoError(t, mock.ExpectationsWereMet())
}
