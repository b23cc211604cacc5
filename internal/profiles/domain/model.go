package domain

import (
	"time"
)

type Layout string

const (
	LayoutGrid     Layout = "grid"
	LayoutList     Layout = "list"
	LayoutCarousel Layout = "carousel"
)

func (l Layout) Valid() bool {
	switch l {
	case LayoutGrid, LayoutList, LayoutCarousel:
		return true
	}
	return false
}

type Colors struct {
	Background string `json:"background" firestore:"background"`
	Text       string `json:"text" firestore:"text"`
	Accent     string `json:"accent" firestore:"accent"`
}

type ShowcaseItemType string

const (
	ItemText  ShowcaseItemType = "text"
	ItemImage ShowcaseItemType = "image"
	ItemGIF   ShowcaseItemType = "gif"
	ItemLink  ShowcaseItemType = "link"
)

func (t ShowcaseItemType) Valid() bool {
	switch t {
	case ItemText, ItemImage, ItemGIF, ItemLink:
		return true
	}
	return false
}

type ShowcaseItem struct {
	ID       string           `json:"id" firestore:"id"`
	Type     ShowcaseItemType `json:"type" firestore:"type"`
	Title    string           `json:"title" firestore:"title"`
	Content  string           `json:"content,omitempty" firestore:"content"`
	ImageURL string           `json:"imageUrl,omitempty" firestore:"imageUrl"`
	LinkURL  string           `json:"linkUrl,omitempty" firestore:"linkUrl"`
	Order    int              `json:"order" firestore:"order"`
}

type BadgeType string

const (
	BadgeStudent       BadgeType = "student"
	BadgePortfolio     BadgeType = "portfolio"
	BadgeCertification BadgeType = "certification"
	BadgeAdmin         BadgeType = "admin"
)

func (t BadgeType) Valid() bool {
	switch t {
	case BadgeStudent, BadgePortfolio, BadgeCertification, BadgeAdmin:
		return true
	}
	return false
}

type VerificationBadge struct {
	Type       BadgeType         `json:"type" firestore:"type"`
	Verified   bool              `json:"verified" firestore:"verified"`
	VerifiedAt *time.Time        `json:"verifiedAt,omitempty" firestore:"verifiedAt"`
	Metadata   map[string]string `json:"metadata,omitempty" firestore:"metadata"`
}

// Connection is one side of a symmetric edge, stored on the owner's profile
// under the other user's id.
type Connection struct {
	UserID         string    `json:"userId" firestore:"userId"`
	ProfileName    string    `json:"profileName" firestore:"profileName"`
	ProfilePicture string    `json:"profilePicture" firestore:"profilePicture"`
	ConnectedAt    time.Time `json:"connectedAt" firestore:"connectedAt"`
}

type Profile struct {
	UserID         string                `json:"userId" firestore:"userId"`
	Email          string                `json:"email" firestore:"email"`
	ProfileName    string                `json:"profileName" firestore:"profileName"`
	ProfilePicture string                `json:"profilePicture" firestore:"profilePicture"`
	Description    string                `json:"description" firestore:"description"`
	Layout         Layout                `json:"layout" firestore:"layout"`
	Colors         Colors                `json:"colors" firestore:"colors"`
	ShowcaseItems  []ShowcaseItem        `json:"showcaseItems" firestore:"showcaseItems"`
	Badges         []VerificationBadge   `json:"badges" firestore:"badges"`
	Connections    map[string]Connection `json:"connections" firestore:"connections"`
	CreatedAt      time.Time             `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt" firestore:"updatedAt"`
}

// Badge returns the badge of type t, or nil.
func (p *Profile) Badge(t BadgeType) *VerificationBadge {
	for i := range p.Badges {
		if p.Badges[i].Type == t {
			return &p.Badges[i]
		}
	}
	return nil
}

// SetBadge replaces the badge of the same type or appends b.
func (p *Profile) SetBadge(b VerificationBadge) {
	if existing := p.Badge(b.Type); existing != nil {
		*existing = b
		return
	}
	p.Badges = append(p.Badges, b)
}

func (p *Profile) RemoveBadge(t BadgeType) {
	out := p.Badges[:0]
	for _, b := range p.Badges {
		if b.Type != t {
			out = append(out, b)
		}
	}
	p.Badges = out
}

// Mirror returns the connection entry other users store for p.
func (p *Profile) Mirror(connectedAt time.Time) Connection {
	return Connection{
		UserID:         p.UserID,
		ProfileName:    p.ProfileName,
		ProfilePicture: p.ProfilePicture,
		ConnectedAt:    connectedAt,
	}
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	ProfileName    *string         `json:"profileName,omitempty"`
	ProfilePicture *string         `json:"profilePicture,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Layout         *Layout         `json:"layout,omitempty"`
	Colors         *Colors         `json:"colors,omitempty"`
	ShowcaseItems  *[]ShowcaseItem `json:"showcaseItems,omitempty"`
}

// BadgeRequest is a user-asserted badge.
type BadgeRequest struct {
	Type     BadgeType         `json:"type" binding:"required"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
