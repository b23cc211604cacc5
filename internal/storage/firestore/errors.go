package firestore

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/folio-social/folio-backend/internal/apperr"
)

// Classify wraps a Firestore or breaker error into the apperr taxonomy.
// Errors that already carry a class are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, class := range []error{
		apperr.ErrNotFound, apperr.ErrPermissionDenied, apperr.ErrUnavailable,
		apperr.ErrValidation, apperr.ErrForbidden, apperr.ErrConflict,
	} {
		if errors.Is(err, class) {
			return err
		}
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	}

	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", apperr.ErrNotFound, err)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%w: %v", apperr.ErrPermissionDenied, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return err
}
