package http

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/notifications/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

type Handler struct {
	aggregator     *service.Aggregator
	pollInterval   time.Duration
	allowedOrigins []string
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

func New(aggregator *service.Aggregator, pollInterval time.Duration, allowedOrigins []string, logger *zap.Logger) *Handler {
	h := &Handler{
		aggregator:     aggregator,
		pollInterval:   pollInterval,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return h
}

// controlMessage is sent by the client over the websocket.
type controlMessage struct {
	PanelOpen *bool `json:"panelOpen"`
	Refresh   bool  `json:"refresh"`
}
