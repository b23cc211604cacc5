package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/auth/domain"
)

const maxSearchResults = 20

// UserDirectory is the persistence the identity directory needs.
type UserDirectory interface {
	GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, uid string) error
	SearchByName(ctx context.Context, q string, limit int) ([]*domain.User, error)
}

type AuthService struct {
	users  UserDirectory
	logger *zap.Logger
}

// NewAuthService builds the service. users may be nil when no directory is configured.
func NewAuthService(users UserDirectory, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

func (s *AuthService) DirectoryEnabled() bool {
	return s.users != nil
}

// GetUserByFirebaseUID retrieves a directory entry by Firebase UID
func (s *AuthService) GetUserByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	if s.users == nil {
		return nil, domain.ErrDirectoryDisabled
	}
	return s.users.GetByFirebaseUID(ctx, uid)
}

// SyncUser mirrors the verified identity into the directory and stamps the login.
// Without a directory it echoes the identity back.
func (s *AuthService) SyncUser(ctx context.Context, id domain.Identity) (*domain.User, error) {
	email := id.Email
	if email == "" {
		email = id.UID + "@firebase.local"
	}
	user := &domain.User{
		FirebaseUID: id.UID,
		Email:       email,
		DisplayName: optional(id.DisplayName),
		PhotoURL:    optional(id.PhotoURL),
	}
	if s.users == nil {
		return user, nil
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, id.UID); err != nil {
		s.logger.Warn("failed to record login", zap.String("uid", id.UID), zap.Error(err))
	}
	return user, nil
}

// Search finds directory users by name or email, excluding the caller.
func (s *AuthService) Search(ctx context.Context, callerUID, q string) ([]*domain.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, domain.ErrEmptyQuery
	}
	if s.users == nil {
		return nil, domain.ErrDirectoryDisabled
	}

	users, err := s.users.SearchByName(ctx, q, maxSearchResults+1)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u.FirebaseUID == callerUID {
			continue
		}
		out = append(out, u)
	}
	if len(out) > maxSearchResults {
		out = out[:maxSearchResults]
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
