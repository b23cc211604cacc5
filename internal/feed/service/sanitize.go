package service

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/folio-social/folio-backend/internal/feed/domain"
)

// textPolicy strips all markup; posts and comments are plain text.
var textPolicy = bluemonday.StrictPolicy()

func cleanText(s string, maxRunes int) (string, error) {
	s = strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
	if utf8.RuneCountInString(s) > maxRunes {
		return "", domain.ErrContentTooLong
	}
	return s, nil
}

func validImageURL(u string) bool {
	if u == "" {
		return true
	}
	if len(u) > domain.MaxImageURLLen {
		return false
	}
	return strings.HasPrefix(u, "https://") ||
		strings.HasPrefix(u, "http://") ||
		strings.HasPrefix(u, "data:image/")
}
