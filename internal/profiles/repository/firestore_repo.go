package repository

import (
	"context"
	"errors"
	"sort"

	"cloud.google.com/go/firestore"

	"github.com/folio-social/folio-backend/internal/apperr"
	"github.com/folio-social/folio-backend/internal/profiles/domain"
	fsstore "github.com/folio-social/folio-backend/internal/storage/firestore"
)

// FirestoreRepository stores one document per user in the profiles collection.
// Connection mirrors live in the document's "connections" map.
type FirestoreRepository struct {
	client  *firestore.Client
	breaker *fsstore.Breaker
}

func NewFirestoreRepository(client *firestore.Client, breaker *fsstore.Breaker) *FirestoreRepository {
	return &FirestoreRepository{client: client, breaker: breaker}
}

func (r *FirestoreRepository) doc(uid string) *firestore.DocumentRef {
	return r.client.Collection(fsstore.ProfilesCollection).Doc(uid)
}

func (r *FirestoreRepository) Get(ctx context.Context, uid string) (*domain.Profile, error) {
	snap, err := fsstore.Call(r.breaker, func() (*firestore.DocumentSnapshot, error) {
		return r.doc(uid).Get(ctx)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	var p domain.Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, err
	}
	p.UserID = uid
	if p.Connections == nil {
		p.Connections = map[string]domain.Connection{}
	}
	return &p, nil
}

// Save writes every profile field except the connection mirrors, which are
// owned by SetConnection and RemoveConnection.
func (r *FirestoreRepository) Save(ctx context.Context, p *domain.Profile) error {
	data := map[string]interface{}{
		"userId":         p.UserID,
		"email":          p.Email,
		"profileName":    p.ProfileName,
		"profilePicture": p.ProfilePicture,
		"description":    p.Description,
		"layout":         p.Layout,
		"colors":         p.Colors,
		"showcaseItems":  p.ShowcaseItems,
		"badges":         p.Badges,
		"createdAt":      p.CreatedAt,
		"updatedAt":      p.UpdatedAt,
	}
	return r.breaker.Do(func() error {
		_, err := r.doc(p.UserID).Set(ctx, data, firestore.MergeAll)
		return err
	})
}

func (r *FirestoreRepository) Delete(ctx context.Context, uid string) error {
	return r.breaker.Do(func() error {
		_, err := r.doc(uid).Delete(ctx)
		return err
	})
}

// SetConnection writes c under connections.<c.UserID> on owner's profile.
// It fails with ErrProfileNotFound rather than creating a stub profile.
func (r *FirestoreRepository) SetConnection(ctx context.Context, ownerUID string, c domain.Connection) error {
	err := r.breaker.Do(func() error {
		_, err := r.doc(ownerUID).Update(ctx, []firestore.Update{
			{FieldPath: firestore.FieldPath{"connections", c.UserID}, Value: c},
		})
		return err
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.ErrProfileNotFound
	}
	return err
}

// RemoveConnection deletes connections.<otherUID> from owner's profile. Missing
// profiles and entries are not errors.
func (r *FirestoreRepository) RemoveConnection(ctx context.Context, ownerUID, otherUID string) error {
	err := r.breaker.Do(func() error {
		_, err := r.doc(ownerUID).Update(ctx, []firestore.Update{
			{FieldPath: firestore.FieldPath{"connections", otherUID}, Value: firestore.Delete},
		})
		return err
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	return err
}

func (r *FirestoreRepository) ListConnections(ctx context.Context, uid string) ([]domain.Connection, error) {
	p, err := r.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return SortedConnections(p.Connections), nil
}

func (r *FirestoreRepository) HasConnection(ctx context.Context, ownerUID, otherUID string) (bool, error) {
	p, err := r.Get(ctx, ownerUID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, ok := p.Connections[otherUID]
	return ok, nil
}

// SortedConnections flattens a connections map, newest first.
func SortedConnections(m map[string]domain.Connection) []domain.Connection {
	out := make([]domain.Connection, 0, len(m))
	for uid, c := range m {
		if c.UserID == "" {
			c.UserID = uid
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConnectedAt.Equal(out[j].ConnectedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].ConnectedAt.After(out[j].ConnectedAt)
	})
	return out
}
