package http

import (
	"context"

	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/profiles/domain"
	"github.com/folio-social/folio-backend/internal/profiles/service"
)

// DeleteHook runs before a profile is deleted; an error aborts the delete.
type DeleteHook func(ctx context.Context, uid string) error

type Handler struct {
	profiles *service.ProfileService
	logger   *zap.Logger
	onDelete []DeleteHook
}

func New(profiles *service.ProfileService, logger *zap.Logger, onDelete ...DeleteHook) *Handler {
	return &Handler{profiles: profiles, logger: logger, onDelete: onDelete}
}

type showcaseRequest struct {
	Items []domain.ShowcaseItem `json:"items"`
}

type badgeLookupRequest struct {
	UserIDs []string `json:"userIds" binding:"required"`
}
