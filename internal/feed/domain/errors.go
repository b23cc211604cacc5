package domain

import (
	"fmt"

	"github.com/folio-social/folio-backend/internal/apperr"
)

var (
	ErrPostNotFound    = fmt.Errorf("%w: post not found", apperr.ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("%w: comment not found", apperr.ErrNotFound)
	ErrEmptyPost       = fmt.Errorf("%w: post needs text or an image", apperr.ErrValidation)
	ErrEmptyComment    = fmt.Errorf("%w: comment cannot be empty", apperr.ErrValidation)
	ErrContentTooLong  = fmt.Errorf("%w: content is too long", apperr.ErrValidation)
	ErrInvalidImageURL = fmt.Errorf("%w: imageUrl must be an http(s) or image data URL", apperr.ErrValidation)
	ErrInvalidCursor   = fmt.Errorf("%w: before is not a valid page cursor", apperr.ErrValidation)
	ErrInvalidLimit    = fmt.Errorf("%w: limit must be between 1 and 50", apperr.ErrValidation)
	ErrNotAuthor       = fmt.Errorf("%w: only the author can do that", apperr.ErrForbidden)
)
