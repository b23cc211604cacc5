package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfile_NameFallsBackToEmail(t *testing.T) {
	p := NewProfile("uid", "sam.lee@example.com", "", "", time.Now())
	assert.Equal(t, "sam.lee", p.ProfileName)
	assert.Equal(t, LayoutGrid, p.Layout)
	assert.Equal(t, DefaultBackground, p.Colors.Background)
	assert.NotNil(t, p.Connections)
}

func TestApply_ColorsMergePerField(t *testing.T) {
	p := NewProfile("uid", "", "Alex", "", time.Now())
	p.Apply(ProfileUpdate{Colors: &Colors{Accent: "#ff0000"}}, false)
	assert.Equal(t, DefaultBackground, p.Colors.Background)
	assert.Equal(t, "#ff0000", p.Colors.Accent)
}

func TestApply_DescriptionOnlySeedsAboutMeOnCreate(t *testing.T) {
	p := NewProfile("uid", "", "Alex", "", time.Now())
	desc := "later edit"
	p.Apply(ProfileUpdate{Description: &desc}, false)
	assert.Equal(t, AboutMeFallbackText, p.ShowcaseItems[0].Content)
}

func TestNormalizeShowcase(t *testing.T) {
	items := NormalizeShowcase([]ShowcaseItem{
		{ID: "c", Order: 9},
		{ID: "a", Order: 1},
		{Order: 1},
	})
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
	assert.NotEmpty(t, items[1].ID)
	assert.Equal(t, "c", items[2].ID)
	for i, it := range items {
		assert.Equal(t, i, it.Order)
	}

	items = NormalizeShowcase([]ShowcaseItem{
		{ID: "x", Order: 2}, {ID: "y", Order: 0}, {ID: "z", Order: 2}, {ID: "w", Order: 0},
	})
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"y", "w", "x", "z"}, ids)
}

func TestProfileUpdate_Validate(t *testing.T) {
	long := strings.Repeat("x", MaxProfileNameLen+1)
	blank := "   "
	bad := Layout("masonry")
	good := LayoutCarousel

	assert.NoError(t, ProfileUpdate{Layout: &good, Colors: &Colors{Text: "#abc"}}.Validate())
	assert.ErrorIs(t, ProfileUpdate{ProfileName: &long}.Validate(), ErrInvalidProfile)
	assert.ErrorIs(t, ProfileUpdate{ProfileName: &blank}.Validate(), ErrInvalidProfile)
	assert.ErrorIs(t, ProfileUpdate{Layout: &bad}.Validate(), ErrInvalidProfile)
	assert.ErrorIs(t, ProfileUpdate{Colors: &Colors{Accent: "#12345"}}.Validate(), ErrInvalidProfile)

	assert.Error(t, ValidateShowcase([]ShowcaseItem{{Type: "video"}}))
	assert.Error(t, ValidateShowcase([]ShowcaseItem{{Type: ItemGIF}}))
	assert.NoError(t, ValidateShowcase([]ShowcaseItem{{Type: ItemLink, LinkURL: "https://example.com/work"}}))
}

func TestDerivePortfolioBadge(t *testing.T) {
	now := time.Now()
	p := NewProfile("uid", "", "Alex", "https://img/a.png", now)
	p.Description = "Designer"
	assert.False(t, p.DerivePortfolioBadge(now))

	p.ShowcaseItems = append(p.ShowcaseItems, ShowcaseItem{ID: "2"}, ShowcaseItem{ID: "3"})
	assert.True(t, p.DerivePortfolioBadge(now))
	assert.False(t, p.DerivePortfolioBadge(now), "already granted")

	p.ProfilePicture = ""
	assert.True(t, p.DerivePortfolioBadge(now))
	assert.Nil(t, p.Badge(BadgePortfolio))
}
