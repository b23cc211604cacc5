package domain

import (
	"fmt"

	"github.com/folio-social/folio-backend/internal/apperr"
)

var (
	ErrUserNotFound      = fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	ErrDirectoryDisabled = fmt.Errorf("%w: identity directory is not configured", apperr.ErrUnavailable)
	ErrEmptyQuery        = fmt.Errorf("%w: search query is required", apperr.ErrValidation)
)
