package domain

import (
	"fmt"

	"github.com/folio-social/folio-backend/internal/apperr"
)

var (
	ErrNotificationNotFound = fmt.Errorf("%w: notification not found", apperr.ErrNotFound)
	ErrNotRecipient         = fmt.Errorf("%w: notification belongs to another user", apperr.ErrForbidden)
	ErrInvalidEvent         = fmt.Errorf("%w: invalid notification event", apperr.ErrValidation)
)
