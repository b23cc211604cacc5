package domain

import "time"

const (
	DefaultPageSize = 20
	MaxPageSize     = 50

	MaxPostRunes    = 5000
	MaxCommentRunes = 2000
	MaxImageURLLen  = 300 << 10
)

type Post struct {
	ID           string    `json:"id" firestore:"-"`
	UserID       string    `json:"userId" firestore:"userId"`
	UserName     string    `json:"userName" firestore:"userName"`
	UserPicture  string    `json:"userPicture" firestore:"userPicture"`
	Content      string    `json:"content" firestore:"content"`
	ImageURL     string    `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	Likes        []string  `json:"likes" firestore:"likes"`
	LikeCount    int       `json:"likeCount" firestore:"likeCount"`
	CommentCount int       `json:"commentCount" firestore:"commentCount"`
	ViewCount    int       `json:"viewCount" firestore:"viewCount"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	LikedByMe    bool      `json:"likedByMe" firestore:"-"`
}

// LikedBy reports whether uid is in the post's like set.
func (p *Post) LikedBy(uid string) bool {
	for _, l := range p.Likes {
		if l == uid {
			return true
		}
	}
	return false
}

// Comment is stored flat; ParentCommentID always names a top-level comment.
type Comment struct {
	ID              string    `json:"id" firestore:"-"`
	PostID          string    `json:"postId" firestore:"postId"`
	UserID          string    `json:"userId" firestore:"userId"`
	UserName        string    `json:"userName" firestore:"userName"`
	UserPicture     string    `json:"userPicture" firestore:"userPicture"`
	Content         string    `json:"content" firestore:"content"`
	ParentCommentID string    `json:"parentCommentId,omitempty" firestore:"parentCommentId,omitempty"`
	CreatedAt       time.Time `json:"createdAt" firestore:"createdAt"`
}

func (c *Comment) IsReply() bool { return c.ParentCommentID != "" }

// Thread is a top-level comment with its replies, oldest first.
type Thread struct {
	*Comment
	Replies []*Comment `json:"replies"`
}

type NewPost struct {
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
}

type NewComment struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID string `json:"parentCommentId"`
}

// Query selects a page of posts newest first. Posts are ordered by
// (CreatedAt, ID) descending; a page starts after (Before, BeforeID).
// An empty BeforeID means strictly older than Before.
type Query struct {
	Before   time.Time
	BeforeID string
	Limit    int
	UserID   string
}

type Page struct {
	Posts      []*Post `json:"posts"`
	NextCursor string  `json:"nextCursor,omitempty"`
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}
