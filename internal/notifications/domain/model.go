package domain

import (
	"time"

	conndomain "github.com/folio-social/folio-backend/internal/connections/domain"
)

type NotificationType string

const (
	TypePostLike     NotificationType = "post_like"
	TypeCommentReply NotificationType = "comment_reply"
)

func (t NotificationType) Valid() bool {
	return t == TypePostLike || t == TypeCommentReply
}

type Notification struct {
	ID              string           `json:"id" firestore:"-"`
	ToUserID        string           `json:"toUserId" firestore:"toUserId"`
	FromUserID      string           `json:"fromUserId" firestore:"fromUserId"`
	FromUserName    string           `json:"fromUserName" firestore:"fromUserName"`
	FromUserPicture string           `json:"fromUserPicture" firestore:"fromUserPicture"`
	Type            NotificationType `json:"type" firestore:"type"`
	PostID          string           `json:"postId,omitempty" firestore:"postId"`
	CommentContent  string           `json:"commentContent,omitempty" firestore:"commentContent"`
	Read            bool             `json:"read" firestore:"read"`
	CreatedAt       time.Time        `json:"createdAt" firestore:"createdAt"`
}

// Event describes a feed action that may produce a notification.
type Event struct {
	Type            NotificationType
	ToUserID        string
	FromUserID      string
	FromUserName    string
	FromUserPicture string
	PostID          string
	CommentContent  string
}

type ItemKind string

const (
	KindConnectionRequest ItemKind = "connection_request"
	KindNotification      ItemKind = "notification"
)

// Item is one row of the notification panel. Exactly one of Request and
// Notification is set, according to Kind.
type Item struct {
	Kind         ItemKind                      `json:"kind"`
	Request      *conndomain.ConnectionRequest `json:"request,omitempty"`
	Notification *Notification                 `json:"notification,omitempty"`
	CreatedAt    time.Time                     `json:"createdAt"`
}

type Summary struct {
	Count int    `json:"count"`
	Items []Item `json:"items"`
}
