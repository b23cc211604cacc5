package domain

import (
	"strings"
	"time"
)

// PortfolioMinItems is the showcase size a profile needs for the portfolio badge.
const PortfolioMinItems = 3

// QualifiesForPortfolio reports whether p has a picture, a description and
// enough showcase items.
func (p *Profile) QualifiesForPortfolio() bool {
	return strings.TrimSpace(p.ProfilePicture) != "" &&
		strings.TrimSpace(p.Description) != "" &&
		len(p.ShowcaseItems) >= PortfolioMinItems
}

// DerivePortfolioBadge grants or withdraws the portfolio badge to match the
// profile's current content. It reports whether the badge list changed.
func (p *Profile) DerivePortfolioBadge(now time.Time) bool {
	has := p.Badge(BadgePortfolio) != nil
	switch qualifies := p.QualifiesForPortfolio(); {
	case qualifies && !has:
		at := now
		p.SetBadge(VerificationBadge{Type: BadgePortfolio, Verified: true, VerifiedAt: &at})
		return true
	case !qualifies && has:
		p.RemoveBadge(BadgePortfolio)
		return true
	}
	return false
}
