package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/google/uuid"

	"github.com/folio-social/folio-backend/internal/apperr"
	"github.com/folio-social/folio-backend/internal/notifications/domain"
	fsstore "github.com/folio-social/folio-backend/internal/storage/firestore"
)

// FirestoreRepository stores notifications in the notifications collection.
// ListFor needs a (toUserId, createdAt desc) composite index.
type FirestoreRepository struct {
	client  *firestore.Client
	breaker *fsstore.Breaker
}

func NewFirestoreRepository(client *firestore.Client, breaker *fsstore.Breaker) *FirestoreRepository {
	return &FirestoreRepository{client: client, breaker: breaker}
}

func (r *FirestoreRepository) col() *firestore.CollectionRef {
	return r.client.Collection(fsstore.NotificationsCollection)
}

func (r *FirestoreRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return r.breaker.Do(func() error {
		_, err := r.col().Doc(n.ID).Create(ctx, n)
		return err
	})
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*domain.Notification, error) {
	snap, err := fsstore.Call(r.breaker, func() (*firestore.DocumentSnapshot, error) {
		return r.col().Doc(id).Get(ctx)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return decode(snap)
}

// ListFor returns up to limit notifications addressed to uid, newest first.
func (r *FirestoreRepository) ListFor(ctx context.Context, uid string, limit int) ([]*domain.Notification, error) {
	return r.query(ctx, r.col().
		Where("toUserId", "==", uid).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit))
}

func (r *FirestoreRepository) CountUnread(ctx context.Context, uid string) (int, error) {
	q := r.col().
		Where("toUserId", "==", uid).
		Where("read", "==", false)

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

func (r *FirestoreRepository) MarkRead(ctx context.Context, id string) error {
	err := r.breaker.Do(func() error {
		_, err := r.col().Doc(id).Update(ctx, []firestore.Update{{Path: "read", Value: true}})
		return err
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.ErrNotificationNotFound
	}
	return err
}

// MarkAllRead flags every unread notification of uid and returns how many changed.
func (r *FirestoreRepository) MarkAllRead(ctx context.Context, uid string) (int, error) {
	unread, err := r.refs(ctx, r.col().
		Where("toUserId", "==", uid).
		Where("read", "==", false))
	if err != nil {
		return 0, err
	}
	return len(unread), r.bulk(ctx, unread, func(bw *firestore.BulkWriter, ref *firestore.DocumentRef) (*firestore.BulkWriterJob, error) {
		return bw.Update(ref, []firestore.Update{{Path: "read", Value: true}})
	})
}

// Delete removes the notification. Deleting a missing one is a no-op.
func (r *FirestoreRepository) Delete(ctx context.Context, id string) error {
	return r.breaker.Do(func() error {
		_, err := r.col().Doc(id).Delete(ctx)
		return err
	})
}

// DeleteByPost removes every notification that points at postID.
func (r *FirestoreRepository) DeleteByPost(ctx context.Context, postID string) error {
	refs, err := r.refs(ctx, r.col().Where("postId", "==", postID))
	if err != nil {
		return err
	}
	return r.bulk(ctx, refs, func(bw *firestore.BulkWriter, ref *firestore.DocumentRef) (*firestore.BulkWriterJob, error) {
		return bw.Delete(ref)
	})
}

func (r *FirestoreRepository) bulk(ctx context.Context, refs []*firestore.DocumentRef, op func(*firestore.BulkWriter, *firestore.DocumentRef) (*firestore.BulkWriterJob, error)) error {
	if len(refs) == 0 {
		return nil
	}
	return r.breaker.Do(func() error {
		bw := r.client.BulkWriter(ctx)
		jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
		for _, ref := range refs {
			job, err := op(bw, ref)
			if err != nil {
				bw.End()
				return err
			}
			jobs = append(jobs, job)
		}
		bw.End()

		var errs []error
		for _, job := range jobs {
			if _, err := job.Results(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

func (r *FirestoreRepository) refs(ctx context.Context, q firestore.Query) ([]*firestore.DocumentRef, error) {
	snaps, err := fsstore.Call(r.breaker, func() ([]*firestore.DocumentSnapshot, error) {
		return q.Select().Documents(ctx).GetAll()
	})
	if err != nil {
		return nil, err
	}
	out := make([]*firestore.DocumentRef, len(snaps))
	for i, snap := range snaps {
		out[i] = snap.Ref
	}
	return out, nil
}

func (r *FirestoreRepository) query(ctx context.Context, q firestore.Query) ([]*domain.Notification, error) {
	snaps, err := fsstore.Call(r.breaker, func() ([]*firestore.DocumentSnapshot, error) {
		return q.Documents(ctx).GetAll()
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Notification, 0, len(snaps))
	for _, snap := range snaps {
		n, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func decode(snap *firestore.DocumentSnapshot) (*domain.Notification, error) {
	var n domain.Notification
	if err := snap.DataTo(&n); err != nil {
		return nil, fmt.Errorf("failed to decode notification %s: %w", snap.Ref.ID, err)
	}
	n.ID = snap.Ref.ID
	return &n, nil
}
