package domain

import (
	"fmt"

	"github.com/folio-social/folio-backend/internal/apperr"
)

var (
	ErrInvalidTarget    = fmt.Errorf("%w: cannot send a connection request to this user", apperr.ErrValidation)
	ErrTargetNotFound   = fmt.Errorf("%w: recipient has no profile", apperr.ErrNotFound)
	ErrDuplicateRequest = fmt.Errorf("%w: a pending request already exists between these users", apperr.ErrConflict)
	ErrAlreadyConnected = fmt.Errorf("%w: users are already connected", apperr.ErrConflict)
	ErrRequestNotFound  = fmt.Errorf("%w: connection request not found", apperr.ErrNotFound)
)
