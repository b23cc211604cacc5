package http

import (
	"context"

	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/auth/service"
)

// SessionHook runs after a successful session sync. Failures are logged, never returned.
type SessionHook func(ctx context.Context, uid string) error

type Handler struct {
	authService *service.AuthService
	logger      *zap.Logger
	hooks       []SessionHook
}

func New(authService *service.AuthService, logger *zap.Logger, hooks ...SessionHook) *Handler {
	return &Handler{
		authService: authService,
		logger:      logger,
		hooks:       hooks,
	}
}
