package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
)

// Collection names shared by every Firestore repository.
const (
	ProfilesCollection           = "profiles"
	ConnectionRequestsCollection = "connectionRequests"
	PostsCollection              = "posts"
	CommentsCollection           = "comments"
	NotificationsCollection      = "notifications"
)

func NewClient(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}
	return client, nil
}
