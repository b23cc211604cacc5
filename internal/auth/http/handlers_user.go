package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/apperr"
	authctx "github.com/folio-social/folio-backend/internal/auth"
	"github.com/folio-social/folio-backend/internal/auth/domain"
)

// SyncUser is called by the client once per session, after Firebase sign-in.
// It mirrors the identity into the directory and runs the session hooks.
func (h *Handler) SyncUser(c *gin.Context) {
	id, ok := authctx.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.authService.SyncUser(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to sync user", zap.String("uid", id.UID), zap.Error(err))
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": "failed to sync user"})
		return
	}

	for _, hook := range h.hooks {
		if err := hook(c.Request.Context(), id.UID); err != nil {
			h.logger.Warn("session hook failed", zap.String("uid", id.UID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Me returns the verified identity and, when available, the directory entry.
func (h *Handler) Me(c *gin.Context) {
	id, ok := authctx.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	resp := gin.H{"identity": id}
	user, err := h.authService.GetUserByFirebaseUID(c.Request.Context(), id.UID)
	switch {
	case err == nil:
		resp["user"] = user
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrDirectoryDisabled):
	default:
		h.logger.Warn("directory lookup failed", zap.String("uid", id.UID), zap.Error(err))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SearchUsers(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	users, err := h.authService.Search(c.Request.Context(), uid, c.Query("q"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
		return
	}
	if users == nil {
		users = []*domain.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
