package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"

	"github.com/folio-social/folio-backend/internal/apperr"
	"github.com/folio-social/folio-backend/internal/connections/domain"
	fsstore "github.com/folio-social/folio-backend/internal/storage/firestore"
)

// FirestoreRepository stores requests in the connectionRequests collection.
// Ordering is applied in memory so that only single-field indexes are needed,
// except ListAcceptedSince which needs a (status, respondedAt) composite index.
type FirestoreRepository struct {
	client  *firestore.Client
	breaker *fsstore.Breaker
}

func NewFirestoreRepository(client *firestore.Client, breaker *fsstore.Breaker) *FirestoreRepository {
	return &FirestoreRepository{client: client, breaker: breaker}
}

func (r *FirestoreRepository) col() *firestore.CollectionRef {
	return r.client.Collection(fsstore.ConnectionRequestsCollection)
}

func (r *FirestoreRepository) Create(ctx context.Context, req *domain.ConnectionRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return r.breaker.Do(func() error {
		_, err := r.col().Doc(req.ID).Create(ctx, req)
		return err
	})
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*domain.ConnectionRequest, error) {
	snap, err := fsstore.Call(r.breaker, func() (*firestore.DocumentSnapshot, error) {
		return r.col().Doc(id).Get(ctx)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return decode(snap)
}

// FindPending returns the pending request from -> to, or nil if there is none.
func (r *FirestoreRepository) FindPending(ctx context.Context, fromUID, toUID string) (*domain.ConnectionRequest, error) {
	reqs, err := r.query(ctx, r.col().
		Where("fromUserId", "==", fromUID).
		Where("toUserId", "==", toUID).
		Where("status", "==", string(domain.StatusPending)).
		Limit(1))
	if err != nil || len(reqs) == 0 {
		return nil, err
	}
	return reqs[0], nil
}

func (r *FirestoreRepository) ListPendingTo(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error) {
	reqs, err := r.query(ctx, r.col().
		Where("toUserId", "==", uid).
		Where("status", "==", string(domain.StatusPending)))
	if err != nil {
		return nil, err
	}
	sortNewestFirst(reqs)
	return reqs, nil
}

func (r *FirestoreRepository) ListPendingFrom(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error) {
	reqs, err := r.query(ctx, r.col().
		Where("fromUserId", "==", uid).
		Where("status", "==", string(domain.StatusPending)))
	if err != nil {
		return nil, err
	}
	sortNewestFirst(reqs)
	return reqs, nil
}

func (r *FirestoreRepository) CountPendingTo(ctx context.Context, uid string) (int, error) {
	q := r.col().
		Where("toUserId", "==", uid).
		Where("status", "==", string(domain.StatusPending))

	res, err := fsstore.Call(r.breaker, func() (firestore.AggregationResult, error) {
		return q.NewAggregationQuery().WithCount("all").Get(ctx)
	})
	if err != nil {
		return 0, err
	}
	v, ok := res["all"].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count result %T", res["all"])
	}
	return int(v.GetIntegerValue()), nil
}

// ListAccepted returns accepted requests where uid is either party.
func (r *FirestoreRepository) ListAccepted(ctx context.Context, uid string) ([]*domain.ConnectionRequest, error) {
	sent, err := r.query(ctx, r.col().
		Where("fromUserId", "==", uid).
		Where("status", "==", string(domain.StatusAccepted)))
	if err != nil {
		return nil, err
	}
	received, err := r.query(ctx, r.col().
		Where("toUserId", "==", uid).
		Where("status", "==", string(domain.StatusAccepted)))
	if err != nil {
		return nil, err
	}
	all := append(sent, received...)
	sortNewestFirst(all)
	return all, nil
}

func (r *FirestoreRepository) ListAcceptedSince(ctx context.Context, since time.Time) ([]*domain.ConnectionRequest, error) {
	return r.query(ctx, r.col().
		Where("status", "==", string(domain.StatusAccepted)).
		Where("respondedAt", ">=", since))
}

func (r *FirestoreRepository) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	err := r.breaker.Do(func() error {
		_, err := r.col().Doc(id).Update(ctx, []firestore.Update{
			{Path: "status", Value: string(domain.StatusAccepted)},
			{Path: "respondedAt", Value: at},
		})
		return err
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.ErrRequestNotFound
	}
	return err
}

// Delete removes the request. Deleting a missing request is a no-op.
func (r *FirestoreRepository) Delete(ctx context.Context, id string) error {
	return r.breaker.Do(func() error {
		_, err := r.col().Doc(id).Delete(ctx)
		return err
	})
}

func (r *FirestoreRepository) query(ctx context.Context, q firestore.Query) ([]*domain.ConnectionRequest, error) {
	snaps, err := fsstore.Call(r.breaker, func() ([]*firestore.DocumentSnapshot, error) {
		return q.Documents(ctx).GetAll()
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.ConnectionRequest, 0, len(snaps))
	for _, snap := range snaps {
		req, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func decode(snap *firestore.DocumentSnapshot) (*domain.ConnectionRequest, error) {
	var req domain.ConnectionRequest
	if err := snap.DataTo(&req); err != nil {
		return nil, fmt.Errorf("failed to decode connection request %s: %w", snap.Ref.ID, err)
	}
	req.ID = snap.Ref.ID
	return &req, nil
}

func sortNewestFirst(reqs []*domain.ConnectionRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
}
