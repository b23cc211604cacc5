package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/folio-social/folio-backend/internal/apperr"
	authdomain "github.com/folio-social/folio-backend/internal/auth/domain"
	"github.com/folio-social/folio-backend/internal/profiles/domain"
)

const (
	maxBadgeLookups     = 100
	badgeLookupParallel = 8
)

// AddBadge records a user-asserted badge. Student and certification badges
// start unverified; admin badges need the admin claim and are verified at once.
func (s *ProfileService) AddBadge(ctx context.Context, id authdomain.Identity, req domain.BadgeRequest) (*domain.Profile, error) {
	switch {
	case !req.Type.Valid():
		return nil, domain.ErrInvalidBadge
	case req.Type == domain.BadgePortfolio:
		return nil, domain.ErrBadgeNotAssignable
	case req.Type == domain.BadgeAdmin && !id.Admin:
		return nil, domain.ErrAdminRequired
	}

	return s.mutateExisting(ctx, id, func(p *domain.Profile) error {
		badge := domain.VerificationBadge{Type: req.Type, Metadata: req.Metadata}
		if req.Type == domain.BadgeAdmin {
			at := s.now()
			badge.Verified = true
			badge.VerifiedAt = &at
		}
		p.SetBadge(badge)
		return nil
	})
}

// RemoveBadge drops a user-asserted badge. Removing a missing badge is a no-op.
func (s *ProfileService) RemoveBadge(ctx context.Context, id authdomain.Identity, t domain.BadgeType) (*domain.Profile, error) {
	switch {
	case !t.Valid():
		return nil, domain.ErrInvalidBadge
	case t == domain.BadgePortfolio:
		return nil, domain.ErrBadgeNotAssignable
	}
	return s.mutateExisting(ctx, id, func(p *domain.Profile) error {
		p.RemoveBadge(t)
		return nil
	})
}

// VerifyBadge marks uid's badge of type t verified. Only admins may verify.
func (s *ProfileService) VerifyBadge(ctx context.Context, caller authdomain.Identity, uid string, t domain.BadgeType) (*domain.Profile, error) {
	switch {
	case !caller.Admin:
		return nil, domain.ErrAdminRequired
	case !t.Valid():
		return nil, domain.ErrInvalidBadge
	case t == domain.BadgePortfolio:
		return nil, domain.ErrBadgeNotAssignable
	}

	p, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	badge := p.Badge(t)
	if badge == nil {
		return nil, domain.ErrBadgeNotFound
	}
	at := s.now()
	badge.Verified = true
	badge.VerifiedAt = &at
	p.UpdatedAt = at

	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	s.remember(ctx, p)
	return p, nil
}

func (s *ProfileService) mutateExisting(ctx context.Context, id authdomain.Identity, fn func(p *domain.Profile) error) (*domain.Profile, error) {
	return s.mutate(ctx, id, func(p *domain.Profile, created bool) error {
		if created {
			return domain.ErrProfileSetupMissing
		}
		return fn(p)
	})
}

// BadgesFor looks up the badges of many users in parallel. Users without a
// profile, or whose profile cannot be read right now, map to an empty list.
func (s *ProfileService) BadgesFor(ctx context.Context, uids []string) (map[string][]domain.VerificationBadge, error) {
	if len(uids) > maxBadgeLookups {
		return nil, domain.ErrTooManyLookups
	}

	var mu sync.Mutex
	out := make(map[string][]domain.VerificationBadge, len(uids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(badgeLookupParallel)
	for _, uid := range uids {
		mu.Lock()
		_, seen := out[uid]
		if !seen {
			out[uid] = []domain.VerificationBadge{}
		}
		mu.Unlock()
		if seen || uid == "" {
			continue
		}

		g.Go(func() error {
			p, err := s.GetProfile(gctx, uid)
			if err != nil {
				if apperr.IsSoft(err) || errors.Is(err, context.Canceled) {
					s.logger.Debug("badge lookup skipped", zap.String("uid", uid), zap.Error(err))
					return nil
				}
				return err
			}
			if p == nil || len(p.Badges) == 0 {
				return nil
			}
			mu.Lock()
			out[uid] = p.Badges
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	delete(out, "")
	return out, nil
}
