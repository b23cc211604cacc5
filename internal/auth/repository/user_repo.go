package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/folio-social/folio-backend/internal/auth/domain"
)

const userColumns = `firebase_uid, email, display_name, photo_url, created_at, updated_at, last_login_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var user domain.User
	var displayName, photoURL sql.NullString
	var lastLoginAt sql.NullTime

	if err := row.Scan(
		&user.FirebaseUID,
		&user.Email,
		&displayName,
		&photoURL,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	); err != nil {
		return nil, err
	}

	if displayName.Valid {
		user.DisplayName = &displayName.String
	}
	if photoURL.Valid {
		user.PhotoURL = &photoURL.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	return &user, nil
}

// GetByFirebaseUID retrieves a user by their Firebase UID
func (r *UserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE firebase_uid = $1`, uid)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByFirebaseUIDs returns the directory entries for the given UIDs; unknown UIDs are skipped.
func (r *UserRepository) GetByFirebaseUIDs(ctx context.Context, uids []string) ([]*domain.User, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE firebase_uid = ANY($1)`,
		pq.Array(uids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

// Upsert creates or updates a user from Firebase identity data.
// Empty display name or photo keep the stored value.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (firebase_uid, email, display_name, photo_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (firebase_uid) DO UPDATE
		SET email = EXCLUDED.email,
		    display_name = COALESCE(EXCLUDED.display_name, users.display_name),
		    photo_url = COALESCE(EXCLUDED.photo_url, users.photo_url),
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(ctx, query,
		user.FirebaseUID,
		user.Email,
		user.DisplayName,
		user.PhotoURL,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

// UpdateLastLogin updates the last login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, uid string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE firebase_uid = $1`, uid)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SearchByName matches display names and emails case-insensitively.
func (r *UserRepository) SearchByName(ctx context.Context, q string, limit int) ([]*domain.User, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(q)) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE display_name ILIKE $1 OR email ILIKE $1
		ORDER BY display_name NULLS LAST, email
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
