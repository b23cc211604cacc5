package domain

import (
	"encoding/base64"
	"strings"
	"time"
)

// EncodeCursor returns the page token that resumes after p.
func EncodeCursor(p *Post) string {
	raw := p.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + p.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes a token from EncodeCursor into q.
func ParseCursor(token string, q *Query) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrInvalidCursor
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return ErrInvalidCursor
	}
	before, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ErrInvalidCursor
	}
	q.Before, q.BeforeID = before, id
	return nil
}
