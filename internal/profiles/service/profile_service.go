package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/apperr"
	authdomain "github.com/folio-social/folio-backend/internal/auth/domain"
	"github.com/folio-social/folio-backend/internal/metrics"
	"github.com/folio-social/folio-backend/internal/profiles/domain"
)

// Store is the document store the adapter reads and writes.
type Store interface {
	Get(ctx context.Context, uid string) (*domain.Profile, error)
	Save(ctx context.Context, p *domain.Profile) error
	Delete(ctx context.Context, uid string) error
	ListConnections(ctx context.Context, uid string) ([]domain.Connection, error)
	RemoveConnection(ctx context.Context, ownerUID, otherUID string) error
}

// Cache holds the last known copy of each profile.
type Cache interface {
	Get(ctx context.Context, uid string) (*domain.Profile, bool, error)
	Put(ctx context.Context, p *domain.Profile) error
	Delete(ctx context.Context, uid string) error
}

// ProfileService is the profile store adapter. Reads and writes that hit an
// offline or permission-denied store fall back to the cache.
type ProfileService struct {
	store  Store
	cache  Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewProfileService(store Store, cache Cache, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetProfile returns uid's profile, or (nil, nil) when the user has not set one up yet.
func (s *ProfileService) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	p, err := s.store.Get(ctx, uid)
	switch {
	case err == nil:
		s.remember(ctx, p)
		return p, nil
	case errors.Is(err, domain.ErrProfileNotFound):
		s.forget(ctx, uid)
		return nil, nil
	case apperr.IsSoft(err):
		if cached := s.cached(ctx, uid); cached != nil {
			metrics.ProfileCacheFallbacks.WithLabelValues("read").Inc()
			s.logger.Warn("serving profile from fallback cache", zap.String("uid", uid), zap.Error(err))
			return cached, nil
		}
		return nil, err
	default:
		return nil, err
	}
}

// UpdateProfile applies a partial update, creating the profile with defaults
// on first save.
func (s *ProfileService) UpdateProfile(ctx context.Context, id authdomain.Identity, upd domain.ProfileUpdate) (*domain.Profile, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(p *domain.Profile, created bool) error {
		p.Apply(upd, created)
		return nil
	})
}

// UpdateShowcase replaces the showcase items in the order given.
func (s *ProfileService) UpdateShowcase(ctx context.Context, id authdomain.Identity, items []domain.ShowcaseItem) (*domain.Profile, error) {
	if items == nil {
		items = []domain.ShowcaseItem{}
	}
	return s.UpdateProfile(ctx, id, domain.ProfileUpdate{ShowcaseItems: &items})
}

// DeleteProfile removes the profile, its cache entry and the mirrors other
// users hold of it. Mirror cleanup is best-effort.
func (s *ProfileService) DeleteProfile(ctx context.Context, uid string) error {
	conns, err := s.store.ListConnections(ctx, uid)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return err
	}
	if err := s.store.Delete(ctx, uid); err != nil {
		return err
	}
	s.forget(ctx, uid)

	for _, c := range conns {
		if err := s.store.RemoveConnection(ctx, c.UserID, uid); err != nil {
			s.logger.Warn("failed to remove mirror of deleted profile",
				zap.String("uid", uid), zap.String("owner", c.UserID), zap.Error(err))
		}
	}
	return nil
}

// mutate loads (or creates) the caller's profile, applies fn, re-derives the
// portfolio badge and writes it back. When the store is unreachable the write
// lands in the cache, provided a cached copy exists.
func (s *ProfileService) mutate(ctx context.Context, id authdomain.Identity, fn func(p *domain.Profile, created bool) error) (*domain.Profile, error) {
	now := s.now()
	p, err := s.store.Get(ctx, id.UID)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrProfileNotFound):
		p = domain.NewProfile(id.UID, id.Email, id.DisplayName, id.PhotoURL, now)
		created = true
	case apperr.IsSoft(err):
		return s.mutateCached(ctx, id.UID, err, now, fn)
	default:
		return nil, err
	}

	if err := fn(p, created); err != nil {
		return nil, err
	}
	p.DerivePortfolioBadge(now)
	p.UpdatedAt = now

	if err := s.store.Save(ctx, p); err != nil {
		if apperr.IsSoft(err) && !created {
			return s.mutateCached(ctx, id.UID, err, now, fn)
		}
		return nil, err
	}
	s.remember(ctx, p)
	return p, nil
}

func (s *ProfileService) mutateCached(ctx context.Context, uid string, storeErr error, now time.Time, fn func(p *domain.Profile, created bool) error) (*domain.Profile, error) {
	p := s.cached(ctx, uid)
	if p == nil {
		return nil, storeErr
	}
	if err := fn(p, false); err != nil {
		return nil, err
	}
	p.DerivePortfolioBadge(now)
	p.UpdatedAt = now
	if err := s.cache.Put(ctx, p); err != nil {
		return nil, storeErr
	}

	metrics.ProfileCacheFallbacks.WithLabelValues("write").Inc()
	s.logger.Warn("profile write kept in fallback cache only", zap.String("uid", uid), zap.Error(storeErr))
	return p, nil
}

func (s *ProfileService) cached(ctx context.Context, uid string) *domain.Profile {
	p, ok, err := s.cache.Get(ctx, uid)
	if err != nil {
		s.logger.Warn("profile cache read failed", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return p
}

func (s *ProfileService) remember(ctx context.Context, p *domain.Profile) {
	if err := s.cache.Put(ctx, p); err != nil {
		s.logger.Warn("profile cache write failed", zap.String("uid", p.UserID), zap.Error(err))
	}
}

func (s *ProfileService) forget(ctx context.Context, uid string) {
	if err := s.cache.Delete(ctx, uid); err != nil {
		s.logger.Warn("profile cache delete failed", zap.String("uid", uid), zap.Error(err))
	}
}
