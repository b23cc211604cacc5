package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/connections/domain"
	"github.com/folio-social/folio-backend/internal/metrics"
	profiledomain "github.com/folio-social/folio-backend/internal/profiles/domain"
)

// SyncAcceptedConnections writes any mirror missing for uid's accepted
// requests, on either side, and returns how many it wrote. A second run with
// nothing changed writes nothing.
func (s *ConnectionService) SyncAcceptedConnections(ctx context.Context, uid string) (int, error) {
	accepted, err := s.requests.ListAccepted(ctx, uid)
	if err != nil {
		return 0, err
	}

	profiles := map[string]*profiledomain.Profile{}
	load := func(id string) (*profiledomain.Profile, error) {
		if p, ok := profiles[id]; ok {
			return p, nil
		}
		p, err := s.mirrors.Get(ctx, id)
		if errors.Is(err, profiledomain.ErrProfileNotFound) {
			p, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		profiles[id] = p
		return p, nil
	}

	repairs := 0
	var errs []error
	for _, req := range accepted {
		for _, side := range [][2]string{{req.FromUserID, req.ToUserID}, {req.ToUserID, req.FromUserID}} {
			owner, counterpart := side[0], side[1]

			ownerProfile, err := load(owner)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if ownerProfile == nil {
				continue
			}
			if _, ok := ownerProfile.Connections[counterpart]; ok {
				continue
			}

			counterpartProfile, err := load(counterpart)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if counterpartProfile == nil {
				continue
			}

			mirror := counterpartProfile.Mirror(req.ConnectedAt())
			if err := s.mirrors.SetConnection(ctx, owner, mirror); err != nil {
				if errors.Is(err, profiledomain.ErrProfileNotFound) {
					continue
				}
				errs = append(errs, err)
				continue
			}
			if ownerProfile.Connections == nil {
				ownerProfile.Connections = map[string]profiledomain.Connection{}
			}
			ownerProfile.Connections[counterpart] = mirror
			repairs++
			metrics.ConnectionRepairs.Inc()
		}
	}

	if repairs > 0 {
		s.logger.Info("repaired connection mirrors", zap.String("uid", uid), zap.Int("repairs", repairs))
	}
	return repairs, errors.Join(errs...)
}

// SweepAccepted reconciles every user involved in a request accepted since
// the given time. Failures for one user do not stop the sweep.
func (s *ConnectionService) SweepAccepted(ctx context.Context, since time.Time) (domain.SyncResult, error) {
	accepted, err := s.requests.ListAcceptedSince(ctx, since)
	if err != nil {
		return domain.SyncResult{}, err
	}

	seen := map[string]bool{}
	var result domain.SyncResult
	var errs []error
	for _, req := range accepted {
		for _, uid := range []string{req.FromUserID, req.ToUserID} {
			if seen[uid] {
				continue
			}
			seen[uid] = true
			if err := ctx.Err(); err != nil {
				return result, err
			}

			n, err := s.SyncAcceptedConnections(ctx, uid)
			result.Users++
			result.Repairs += n
			if err != nil {
				s.logger.Warn("sync failed for user", zap.String("uid", uid), zap.Error(err))
				errs = append(errs, err)
			}
		}
	}
	return result, errors.Join(errs...)
}

// ResetConnections removes every connection of uid on both sides, along with
// the accepted request records behind them. It returns how many edges were removed.
func (s *ConnectionService) ResetConnections(ctx context.Context, uid string) (int, error) {
	accepted, err := s.requests.ListAccepted(ctx, uid)
	if err != nil {
		return 0, err
	}
	for _, req := range accepted {
		if err := s.requests.Delete(ctx, req.ID); err != nil {
			return 0, err
		}
	}

	conns, err := s.ListConnections(ctx, uid)
	if err != nil {
		return 0, err
	}
	for _, c := range conns {
		if err := s.mirrors.RemoveConnection(ctx, c.UserID, uid); err != nil {
			return 0, err
		}
		if err := s.mirrors.RemoveConnection(ctx, uid, c.UserID); err != nil {
			return 0, err
		}
	}

	s.logger.Info("connections reset", zap.String("uid", uid), zap.Int("removed", len(conns)))
	return len(conns), nil
}

// ForgetUser removes every trace of uid from the connection graph: its
// connections and every pending request it sent or received.
func (s *ConnectionService) ForgetUser(ctx context.Context, uid string) error {
	if _, err := s.ResetConnections(ctx, uid); err != nil {
		return err
	}

	received, err := s.requests.ListPendingTo(ctx, uid)
	if err != nil {
		return err
	}
	sent, err := s.requests.ListPendingFrom(ctx, uid)
	if err != nil {
		return err
	}
	for _, req := range append(received, sent...) {
		if err := s.requests.Delete(ctx, req.ID); err != nil {
			return err
		}
	}
	return nil
}
