package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	authdomain "github.com/folio-social/folio-backend/internal/auth/domain"
	"github.com/folio-social/folio-backend/internal/connections/domain"
	profiledomain "github.com/folio-social/folio-backend/internal/profiles/domain"
)

// Requests persists connection requests.
type Requests interface {
	Create(ctx context.Context, req *domain.ConnectionRequest) error
	Get(ctx context.Context, id string) (*domain.ConnectionRequest, error)
	FindPending(ctx context.Context, fromUID, toUID string) (*domain.ConnectionRequest, error)
	ListPendingTo(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error)
	ListPendingFrom(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error)
	CountPendingTo(ctx context.Context, uid string) (int, error)
	ListAccepted(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error)
	ListAcceptedSince(ctx context.Context, since time.Time) ([]*domain.ConnectionRequest, error)
	MarkAccepted(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// Mirrors reads profiles and writes the connection entries stored on them.
type Mirrors interface {
	Get(ctx context.Context, uid string) (*profiledomain.Profile, error)
	SetConnection(ctx context.Context, ownerUID string, c profiledomain.Connection) error
	RemoveConnection(ctx context.Context, ownerUID, otherUID string) error
	HasConnection(ctx context.Context, ownerUID, otherUID string) (bool, error)
	ListConnections(ctx context.Context, uid string) ([]profiledomain.Connection, error)
}

// ConnectionService runs the request lifecycle. Multi-document writes are not
// transactional; SyncAcceptedConnections repairs half-written edges.
type ConnectionService struct {
	requests Requests
	mirrors  Mirrors
	logger   *zap.Logger
	now      func() time.Time
}

func NewConnectionService(requests Requests, mirrors Mirrors, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		requests: requests,
		mirrors:  mirrors,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SendRequest creates a pending request from -> toUID. fromProfile may be nil,
// in which case the sender's identity supplies the display name and picture.
func (s *ConnectionService) SendRequest(ctx context.Context, from authdomain.Identity, fromProfile *profiledomain.Profile, toUID string) (*domain.ConnectionRequest, error) {
	toUID = strings.TrimSpace(toUID)
	if toUID == "" || toUID == from.UID {
		return nil, domain.ErrInvalidTarget
	}

	for _, pair := range [][2]string{{from.UID, toUID}, {toUID, from.UID}} {
		existing, err := s.requests.FindPending(ctx, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicateRequest
		}
	}

	connected, err := s.mirrors.HasConnection(ctx, from.UID, toUID)
	if err != nil {
		return nil, err
	}
	if connected {
		return nil, domain.ErrAlreadyConnected
	}

	if _, err := s.mirrors.Get(ctx, toUID); err != nil {
		if errors.Is(err, profiledomain.ErrProfileNotFound) {
			return nil, domain.ErrTargetNotFound
		}
		return nil, err
	}

	req := &domain.ConnectionRequest{
		FromUserID:      from.UID,
		FromUserName:    from.DisplayName,
		FromUserPicture: from.PhotoURL,
		ToUserID:        toUID,
		Status:          domain.StatusPending,
		CreatedAt:       s.now(),
	}
	if fromProfile != nil {
		req.FromUserName = fromProfile.ProfileName
		req.FromUserPicture = fromProfile.ProfilePicture
	}
	if req.FromUserName == "" {
		req.FromUserName = from.Email
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("connection request sent",
		zap.String("request_id", req.ID),
		zap.String("from", req.FromUserID),
		zap.String("to", req.ToUserID),
	)
	return req, nil
}

// CancelRequest withdraws fromUID's pending request to toUID. No-op if there is none.
func (s *ConnectionService) CancelRequest(ctx context.Context, fromUID, toUID string) error {
	req, err := s.requests.FindPending(ctx, fromUID, toUID)
	if err != nil || req == nil {
		return err
	}
	return s.requests.Delete(ctx, req.ID)
}

// RespondToRequest accepts or declines a pending request addressed to toUID.
// Accepting marks the request accepted, then writes the mirror on the
// recipient's profile, then the reciprocal one on the requester's. If a mirror
// write fails the request stays accepted and the error is returned.
func (s *ConnectionService) RespondToRequest(ctx context.Context, toUID, requestID string, accept bool, requesterProfile *profiledomain.Profile) (*domain.ConnectionRequest, error) {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ToUserID != toUID || req.Status != domain.StatusPending {
		return nil, domain.ErrRequestNotFound
	}

	if !accept {
		if err := s.requests.Delete(ctx, req.ID); err != nil {
			return nil, err
		}
		req.Status = domain.StatusDeclined
		at := s.now()
		req.RespondedAt = &at
		return req, nil
	}

	at := s.now()
	if err := s.requests.MarkAccepted(ctx, req.ID, at); err != nil {
		return nil, err
	}
	req.Status = domain.StatusAccepted
	req.RespondedAt = &at

	if requesterProfile == nil {
		requesterProfile = s.profileOrStub(ctx, req.FromUserID, req.FromUserName, req.FromUserPicture)
	}
	recipientProfile := s.profileOrStub(ctx, toUID, "", "")

	if err := s.mirrors.SetConnection(ctx, toUID, requesterProfile.Mirror(at)); err != nil {
		return req, err
	}
	if err := s.mirrors.SetConnection(ctx, req.FromUserID, recipientProfile.Mirror(at)); err != nil {
		return req, err
	}
	return req, nil
}

// RemoveConnection deletes the edge between a and b: first the accepted
// request records, so reconciliation cannot resurrect it, then both mirrors.
func (s *ConnectionService) RemoveConnection(ctx context.Context, a, b string) error {
	accepted, err := s.requests.ListAccepted(ctx, a)
	if err != nil {
		return err
	}
	for _, req := range accepted {
		if !req.Involves(a, b) {
			continue
		}
		if err := s.requests.Delete(ctx, req.ID); err != nil {
			return err
		}
	}

	if err := s.mirrors.RemoveConnection(ctx, a, b); err != nil {
		return err
	}
	return s.mirrors.RemoveConnection(ctx, b, a)
}

// HasPendingRequest reports whether fromUID has a pending request to toUID.
func (s *ConnectionService) HasPendingRequest(ctx context.Context, fromUID, toUID string) (bool, error) {
	req, err := s.requests.FindPending(ctx, fromUID, toUID)
	if err != nil {
		return false, err
	}
	return req != nil, nil
}

func (s *ConnectionService) Relationship(ctx context.Context, viewer, other string) (domain.Relationship, error) {
	connected, err := s.mirrors.HasConnection(ctx, viewer, other)
	if err != nil {
		return domain.Relationship{}, err
	}
	if connected {
		return domain.Relationship{State: domain.RelationshipConnected}, nil
	}

	out, err := s.requests.FindPending(ctx, viewer, other)
	if err != nil {
		return domain.Relationship{}, err
	}
	if out != nil {
		return domain.Relationship{State: domain.RelationshipOutgoing, RequestID: out.ID}, nil
	}

	in, err := s.requests.FindPending(ctx, other, viewer)
	if err != nil {
		return domain.Relationship{}, err
	}
	if in != nil {
		return domain.Relationship{State: domain.RelationshipIncoming, RequestID: in.ID}, nil
	}
	return domain.Relationship{State: domain.RelationshipNone}, nil
}

// GetConnectionRequestCount counts pending requests addressed to uid.
func (s *ConnectionService) GetConnectionRequestCount(ctx context.Context, uid string) (int, error) {
	return s.requests.CountPendingTo(ctx, uid)
}

func (s *ConnectionService) ListPendingRequests(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error) {
	return s.requests.ListPendingTo(ctx, uid)
}

func (s *ConnectionService) ListSentRequests(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error) {
	return s.requests.ListPendingFrom(ctx, uid)
}

// ListConnections returns uid's materialized connections, newest first.
func (s *ConnectionService) ListConnections(ctx context.Context, uid string) ([]profiledomain.Connection, error) {
	conns, err := s.mirrors.ListConnections(ctx, uid)
	if errors.Is(err, profiledomain.ErrProfileNotFound) {
		return []profiledomain.Connection{}, nil
	}
	return conns, err
}

// profileOrStub loads uid's profile, or builds a minimal one from the given
// fallbacks when it cannot be read.
func (s *ConnectionService) profileOrStub(ctx context.Context, uid, name, picture string) *profiledomain.Profile {
	p, err := s.mirrors.Get(ctx, uid)
	if err == nil {
		return p
	}
	s.logger.Debug("using stub profile for mirror", zap.String("uid", uid), zap.Error(err))
	return &profiledomain.Profile{UserID: uid, ProfileName: name, ProfilePicture: picture}
}
