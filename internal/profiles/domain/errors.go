package domain

import (
	"fmt"

	"github.com/folio-social/folio-backend/internal/apperr"
)

var (
	ErrProfileNotFound     = fmt.Errorf("%w: profile not found", apperr.ErrNotFound)
	ErrInvalidProfile      = fmt.Errorf("%w: invalid profile", apperr.ErrValidation)
	ErrInvalidBadge        = fmt.Errorf("%w: invalid badge type", apperr.ErrValidation)
	ErrBadgeNotFound       = fmt.Errorf("%w: badge not found", apperr.ErrNotFound)
	ErrTooManyLookups      = fmt.Errorf("%w: too many user ids", apperr.ErrValidation)
	ErrBadgeNotAssignable  = fmt.Errorf("%w: badge is granted by the system", apperr.ErrForbidden)
	ErrAdminRequired       = fmt.Errorf("%w: admin privileges required", apperr.ErrForbidden)
	ErrProfileSetupMissing = fmt.Errorf("%w: create a profile first", apperr.ErrConflict)
)
