package http

import (
	"context"

	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/connections/service"
	profiledomain "github.com/folio-social/folio-backend/internal/profiles/domain"
)

// ProfileReader supplies the sender's profile for request display fields.
type ProfileReader interface {
	GetProfile(ctx context.Context, uid string) (*profiledomain.Profile, error)
}

type Handler struct {
	connections *service.ConnectionService
	profiles    ProfileReader
	logger      *zap.Logger
}

func New(connections *service.ConnectionService, profiles ProfileReader, logger *zap.Logger) *Handler {
	return &Handler{connections: connections, profiles: profiles, logger: logger}
}

type sendRequestBody struct {
	ToUserID string `json:"toUserId" binding:"required"`
}

type respondBody struct {
	Accept *bool `json:"accept" binding:"required"`
}
