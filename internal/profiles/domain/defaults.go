package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBackground = "#ffffff"
	DefaultText       = "#1f2937"
	DefaultAccent     = "#3b82f6"

	AboutMeTitle        = "About Me"
	AboutMeFallbackText = "Welcome to my portfolio! Use the editor to tell visitors about yourself and add showcase items."
)

// NewProfile returns the profile a first save creates: grid layout, default
// colors and one "About Me" text item.
func NewProfile(uid, email, displayName, photoURL string, now time.Time) *Profile {
	name := displayName
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return &Profile{
		UserID:         uid,
		Email:          email,
		ProfileName:    name,
		ProfilePicture: photoURL,
		Layout:         LayoutGrid,
		Colors: Colors{
			Background: DefaultBackground,
			Text:       DefaultText,
			Accent:     DefaultAccent,
		},
		ShowcaseItems: []ShowcaseItem{{
			ID:      uuid.NewString(),
			Type:    ItemText,
			Title:   AboutMeTitle,
			Content: AboutMeFallbackText,
			Order:   0,
		}},
		Badges:      []VerificationBadge{},
		Connections: map[string]Connection{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply merges u into p. The "About Me" item of a freshly created profile
// follows the description until the user edits the showcase.
func (p *Profile) Apply(u ProfileUpdate, created bool) {
	if u.ProfileName != nil {
		p.ProfileName = strings.TrimSpace(*u.ProfileName)
	}
	if u.ProfilePicture != nil {
		p.ProfilePicture = *u.ProfilePicture
	}
	if u.Description != nil {
		p.Description = strings.TrimSpace(*u.Description)
		if created && u.ShowcaseItems == nil && p.Description != "" && len(p.ShowcaseItems) == 1 {
			p.ShowcaseItems[0].Content = p.Description
		}
	}
	if u.Layout != nil {
		p.Layout = *u.Layout
	}
	if u.Colors != nil {
		c := *u.Colors
		if c.Background != "" {
			p.Colors.Background = c.Background
		}
		if c.Text != "" {
			p.Colors.Text = c.Text
		}
		if c.Accent != "" {
			p.Colors.Accent = c.Accent
		}
	}
	if u.ShowcaseItems != nil {
		p.ShowcaseItems = NormalizeShowcase(*u.ShowcaseItems)
	}
}

// NormalizeShowcase assigns missing ids and renumbers order densely,
// keeping the relative order the caller sent.
func NormalizeShowcase(items []ShowcaseItem) []ShowcaseItem {
	out := make([]ShowcaseItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
		out[i].Order = i
	}
	return out
}
