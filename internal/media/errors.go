package media

import (
	"fmt"

	"github.com/folio-social/folio-backend/internal/apperr"
)

var (
	ErrInvalidFileType         = fmt.Errorf("%w: file is not a supported image", apperr.ErrValidation)
	ErrFileTooLarge            = fmt.Errorf("%w: file too large", apperr.ErrValidation)
	ErrCompressionInsufficient = fmt.Errorf("%w: image could not be compressed below the size limit", apperr.ErrValidation)
	ErrInvalidOptions          = fmt.Errorf("%w: invalid media options", apperr.ErrValidation)
)
