package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/apperr"
	authctx "github.com/folio-social/folio-backend/internal/auth"
)

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
}

func (h *Handler) Summary(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	summary, err := h.aggregator.GetUnreadSummary(c.Request.Context(), uid)
	if err != nil {
		if apperr.IsSoft(err) {
			h.logger.Warn("notification summary unavailable", zap.String("uid", uid), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"degraded": true})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) Count(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	count, err := h.aggregator.UnreadCount(c.Request.Context(), uid)
	if err != nil {
		if apperr.IsSoft(err) {
			h.logger.Warn("notification count unavailable", zap.String("uid", uid), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"degraded": true})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	if err := h.aggregator.MarkNotificationRead(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	changed, err := h.aggregator.MarkAllRead(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": changed})
}

func (h *Handler) Delete(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	if err := h.aggregator.DeleteNotification(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
