package domain

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusDeclined RequestStatus = "declined"
)

// ConnectionRequest is a directed request from one user to another. Declined
// and cancelled requests are deleted; accepted ones are kept so that
// reconciliation can rebuild missing mirrors.
type ConnectionRequest struct {
	ID              string        `json:"id" firestore:"id"`
	FromUserID      string        `json:"fromUserId" firestore:"fromUserId"`
	FromUserName    string        `json:"fromUserName" firestore:"fromUserName"`
	FromUserPicture string        `json:"fromUserPicture" firestore:"fromUserPicture"`
	ToUserID        string        `json:"toUserId" firestore:"toUserId"`
	Status          RequestStatus `json:"status" firestore:"status"`
	CreatedAt       time.Time     `json:"createdAt" firestore:"createdAt"`
	RespondedAt     *time.Time    `json:"respondedAt,omitempty" firestore:"respondedAt"`
}

// Other returns the participant that is not uid.
func (r *ConnectionRequest) Other(uid string) string {
	if r.FromUserID == uid {
		return r.ToUserID
	}
	return r.FromUserID
}

// Involves reports whether both a and b take part in r, in either direction.
func (r *ConnectionRequest) Involves(a, b string) bool {
	return (r.FromUserID == a && r.ToUserID == b) || (r.FromUserID == b && r.ToUserID == a)
}

// ConnectedAt is when the edge came into being.
func (r *ConnectionRequest) ConnectedAt() time.Time {
	if r.RespondedAt != nil {
		return *r.RespondedAt
	}
	return r.CreatedAt
}

type RelationshipState string

const (
	RelationshipNone      RelationshipState = "none"
	RelationshipOutgoing  RelationshipState = "outgoing"
	RelationshipIncoming  RelationshipState = "incoming"
	RelationshipConnected RelationshipState = "connected"
)

// Relationship is how viewer relates to another user, for rendering the
// request, cancel or accept affordance.
type Relationship struct {
	State     RelationshipState `json:"state"`
	RequestID string            `json:"requestId,omitempty"`
}

// SyncResult summarizes a reconciliation sweep.
type SyncResult struct {
	Users   int `json:"users"`
	Repairs int `json:"repairs"`
}
