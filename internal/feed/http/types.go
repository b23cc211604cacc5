package http

import (
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/feed/service"
)

type Handler struct {
	feed   *service.FeedService
	logger *zap.Logger
}

func New(feed *service.FeedService, logger *zap.Logger) *Handler {
	return &Handler{feed: feed, logger: logger}
}

type listQuery struct {
	Before string `form:"before"`
	Limit  int    `form:"limit"`
	User   string `form:"user"`
}
