package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"github.com/folio-social/folio-backend/internal/apperr"
	"github.com/folio-social/folio-backend/internal/feed/domain"
	fsstore "github.com/folio-social/folio-backend/internal/storage/firestore"
)

// FirestoreRepository stores posts and comments in their own collections.
// Listing a single user's posts needs a (userId, createdAt desc) composite index.
type FirestoreRepository struct {
	client  *firestore.Client
	breaker *fsstore.Breaker
}

func NewFirestoreRepository(client *firestore.Client, breaker *fsstore.Breaker) *FirestoreRepository {
	return &FirestoreRepository{client: client, breaker: breaker}
}

func (r *FirestoreRepository) posts() *firestore.CollectionRef {
	return r.client.Collection(fsstore.PostsCollection)
}

func (r *FirestoreRepository) comments() *firestore.CollectionRef {
	return r.client.Collection(fsstore.CommentsCollection)
}

func (r *FirestoreRepository) CreatePost(ctx context.Context, p *domain.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	return r.breaker.Do(func() error {
		_, err := r.posts().Doc(p.ID).Create(ctx, p)
		return err
	})
}

func (r *FirestoreRepository) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	snap, err := fsstore.Call(r.breaker, func() (*firestore.DocumentSnapshot, error) {
		return r.posts().Doc(id).Get(ctx)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return decodePost(snap)
}

func (r *FirestoreRepository) ListPosts(ctx context.Context, q domain.Query) ([]*domain.Post, error) {
	query := r.posts().Query
	if q.UserID != "" {
		query = query.Where("userId", "==", q.UserID)
	}
	query = query.OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)
	switch {
	case q.BeforeID != "":
		query = query.StartAfter(q.Before, q.BeforeID)
	case !q.Before.IsZero():
		query = query.Where("createdAt", "<", q.Before)
	}
	query = query.Limit(q.Limit)

	snaps, err := fsstore.Call(r.breaker, func() ([]*firestore.DocumentSnapshot, error) {
		return query.Documents(ctx).GetAll()
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Post, 0, len(snaps))
	for _, snap := range snaps {
		p, err := decodePost(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// DeletePost removes the post and all of its comments.
func (r *FirestoreRepository) DeletePost(ctx context.Context, id string) error {
	snaps, err := fsstore.Call(r.breaker, func() ([]*firestore.DocumentSnapshot, error) {
		return r.comments().Where("postId", "==", id).Select().Documents(ctx).GetAll()
	})
	if err != nil {
		return err
	}

	return r.breaker.Do(func() error {
		bw := r.client.BulkWriter(ctx)
		jobs := make([]*firestore.BulkWriterJob, 0, len(snaps)+1)
		for _, snap := range snaps {
			job, err := bw.Delete(snap.Ref)
			if err != nil {
				bw.End()
				return err
			}
			jobs = append(jobs, job)
		}
		job, err := bw.Delete(r.posts().Doc(id))
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
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

// ToggleLike adds or removes uid from the post's likes inside a transaction.
func (r *FirestoreRepository) ToggleLike(ctx context.Context, postID, uid string) (domain.LikeResult, error) {
	var res domain.LikeResult
	ref := r.posts().Doc(postID)

	err := r.breaker.Do(func() error {
		return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			snap, err := tx.Get(ref)
			if err != nil {
				return err
			}
			p, err := decodePost(snap)
			if err != nil {
				return err
			}

			if p.LikedBy(uid) {
				res = domain.LikeResult{Liked: false, LikeCount: max(p.LikeCount-1, 0)}
				return tx.Update(ref, []firestore.Update{
					{Path: "likes", Value: firestore.ArrayRemove(uid)},
					{Path: "likeCount", Value: firestore.Increment(-1)},
				})
			}
			res = domain.LikeResult{Liked: true, LikeCount: p.LikeCount + 1}
			return tx.Update(ref, []firestore.Update{
				{Path: "likes", Value: firestore.ArrayUnion(uid)},
				{Path: "likeCount", Value: firestore.Increment(1)},
			})
		})
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return res, domain.ErrPostNotFound
	}
	return res, err
}

func (r *FirestoreRepository) IncrementViews(ctx context.Context, postID string) error {
	err := r.breaker.Do(func() error {
		_, err := r.posts().Doc(postID).Update(ctx, []firestore.Update{
			{Path: "viewCount", Value: firestore.Increment(1)},
		})
		return err
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.ErrPostNotFound
	}
	return err
}

// CreateComment stores the comment and bumps the post's comment count.
func (r *FirestoreRepository) CreateComment(ctx context.Context, c *domain.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	postRef := r.posts().Doc(c.PostID)

	err := r.breaker.Do(func() error {
		return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			if _, err := tx.Get(postRef); err != nil {
				return err
			}
			if err := tx.Create(r.comments().Doc(c.ID), c); err != nil {
				return err
			}
			return tx.Update(postRef, []firestore.Update{
				{Path: "commentCount", Value: firestore.Increment(1)},
			})
		})
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.ErrPostNotFound
	}
	return err
}

func (r *FirestoreRepository) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	snap, err := fsstore.Call(r.breaker, func() (*firestore.DocumentSnapshot, error) {
		return r.comments().Doc(id).Get(ctx)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, err
	}
	return decodeComment(snap)
}

// ListComments returns every comment of the post, oldest first.
func (r *FirestoreRepository) ListComments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	snaps, err := fsstore.Call(r.breaker, func() ([]*firestore.DocumentSnapshot, error) {
		return r.comments().Where("postId", "==", postID).Documents(ctx).GetAll()
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Comment, 0, len(snaps))
	for _, snap := range snaps {
		c, err := decodeComment(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteComments removes the given comments of a post and lowers its comment
// count by the number actually deleted.
func (r *FirestoreRepository) DeleteComments(ctx context.Context, postID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	postRef := r.posts().Doc(postID)

	return r.breaker.Do(func() error {
		return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			refs := make([]*firestore.DocumentRef, len(ids))
			for i, id := range ids {
				refs[i] = r.comments().Doc(id)
			}
			snaps, err := tx.GetAll(refs)
			if err != nil {
				return err
			}
			_, err = tx.Get(postRef)
			postExists := err == nil
			if err != nil && !isNotFound(err) {
				return err
			}

			deleted := 0
			for _, snap := range snaps {
				if !snap.Exists() {
					continue
				}
				if err := tx.Delete(snap.Ref); err != nil {
					return err
				}
				deleted++
			}
			if deleted == 0 || !postExists {
				return nil
			}
			return tx.Update(postRef, []firestore.Update{
				{Path: "commentCount", Value: firestore.Increment(-deleted)},
			})
		})
	})
}

func isNotFound(err error) bool {
	return errors.Is(fsstore.Classify(err), apperr.ErrNotFound)
}

func decodePost(snap *firestore.DocumentSnapshot) (*domain.Post, error) {
	var p domain.Post
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode post %s: %w", snap.Ref.ID, err)
	}
	p.ID = snap.Ref.ID
	if p.Likes == nil {
		p.Likes = []string{}
	}
	return &p, nil
}

func decodeComment(snap *firestore.DocumentSnapshot) (*domain.Comment, error) {
	var c domain.Comment
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("failed to decode comment %s: %w", snap.Ref.ID, err)
	}
	c.ID = snap.Ref.ID
	return &c, nil
}
