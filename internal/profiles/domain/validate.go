package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxProfileNameLen = 60
	MaxDescriptionLen = 1000
	MaxShowcaseItems  = 50
	MaxItemTitleLen   = 120
	MaxItemContentLen = 5000
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProfile, fmt.Sprintf(format, args...))
}

// Validate checks u before any store call.
func (u ProfileUpdate) Validate() error {
	if u.ProfileName != nil {
		name := strings.TrimSpace(*u.ProfileName)
		if name == "" {
			return invalid("profileName cannot be empty")
		}
		if utf8.RuneCountInString(name) > MaxProfileNameLen {
			return invalid("profileName longer than %d characters", MaxProfileNameLen)
		}
	}
	if u.Description != nil && utf8.RuneCountInString(*u.Description) > MaxDescriptionLen {
		return invalid("description longer than %d characters", MaxDescriptionLen)
	}
	if u.Layout != nil && !u.Layout.Valid() {
		return invalid("unknown layout %q", *u.Layout)
	}
	if u.Colors != nil {
		for field, v := range map[string]string{
			"background": u.Colors.Background,
			"text":       u.Colors.Text,
			"accent":     u.Colors.Accent,
		} {
			if v != "" && !hexColor.MatchString(v) {
				return invalid("colors.%s must be a hex color", field)
			}
		}
	}
	if u.ShowcaseItems != nil {
		return ValidateShowcase(*u.ShowcaseItems)
	}
	return nil
}

func ValidateShowcase(items []ShowcaseItem) error {
	if len(items) > MaxShowcaseItems {
		return invalid("at most %d showcase items", MaxShowcaseItems)
	}
	for i, it := range items {
		if !it.Type.Valid() {
			return invalid("showcaseItems[%d]: unknown type %q", i, it.Type)
		}
		if utf8.RuneCountInString(it.Title) > MaxItemTitleLen {
			return invalid("showcaseItems[%d]: title too long", i)
		}
		if utf8.RuneCountInString(it.Content) > MaxItemContentLen {
			return invalid("showcaseItems[%d]: content too long", i)
		}
		switch it.Type {
		case ItemLink:
			if !isHTTPURL(it.LinkURL) {
				return invalid("showcaseItems[%d]: linkUrl must be an http(s) URL", i)
			}
		case ItemImage, ItemGIF:
			if it.ImageURL == "" {
				return invalid("showcaseItems[%d]: imageUrl is required", i)
			}
		}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
