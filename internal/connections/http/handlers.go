package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/apperr"
	authctx "github.com/folio-social/folio-backend/internal/auth"
	"github.com/folio-social/folio-backend/internal/connections/domain"
	profiledomain "github.com/folio-social/folio-backend/internal/profiles/domain"
)

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
}

func (h *Handler) SendRequest(c *gin.Context) {
	id, _ := authctx.CurrentIdentity(c)

	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "toUserId is required"})
		return
	}

	ctx := c.Request.Context()
	fromProfile, err := h.profiles.GetProfile(ctx, id.UID)
	if err != nil {
		h.logger.Warn("sender profile unavailable", zap.String("uid", id.UID), zap.Error(err))
	}

	req, err := h.connections.SendRequest(ctx, id, fromProfile, body.ToUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

func (h *Handler) CancelRequest(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	if err := h.connections.CancelRequest(c.Request.Context(), uid, c.Param("uid")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request cancelled"})
}

func (h *Handler) RespondToRequest(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)

	var body respondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "accept is required"})
		return
	}

	req, err := h.connections.RespondToRequest(c.Request.Context(), uid, c.Param("id"), *body.Accept, nil)
	if err != nil {
		if req != nil {
			// Accepted, but a mirror write failed; reconciliation will finish it.
			h.logger.Warn("connection accepted partially",
				zap.String("request_id", req.ID), zap.Error(err))
			c.JSON(http.StatusAccepted, gin.H{"request": req, "warning": "connection will finish syncing shortly"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// ListRequests returns pending requests addressed to the caller, or sent by
// the caller with ?direction=sent.
func (h *Handler) ListRequests(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	ctx := c.Request.Context()

	var (
		reqs []*domain.ConnectionRequest
		err  error
	)
	if c.Query("direction") == "sent" {
		reqs, err = h.connections.ListSentRequests(ctx, uid)
	} else {
		reqs, err = h.connections.ListPendingRequests(ctx, uid)
	}
	if err != nil {
		if apperr.IsSoft(err) {
			h.logger.Warn("pending requests unavailable", zap.String("uid", uid), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"requests": []*domain.ConnectionRequest{}, "degraded": true})
			return
		}
		respondError(c, err)
		return
	}
	if reqs == nil {
		reqs = []*domain.ConnectionRequest{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

func (h *Handler) CountRequests(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	n, err := h.connections.GetConnectionRequestCount(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) ListConnections(c *gin.Context) {
	uid := c.DefaultQuery("user", authctx.UserFirebaseUID(c))
	conns, err := h.connections.ListConnections(c.Request.Context(), uid)
	if err != nil {
		if apperr.IsSoft(err) {
			h.logger.Warn("connections unavailable", zap.String("uid", uid), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"connections": []profiledomain.Connection{}, "degraded": true})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

func (h *Handler) RemoveConnection(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	if err := h.connections.RemoveConnection(c.Request.Context(), uid, c.Param("uid")); err != nil {
		h.logger.Error("failed to remove connection", zap.String("uid", uid), zap.String("other", c.Param("uid")), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "connection removed"})
}

// ResetConnections removes all of the caller's connections.
func (h *Handler) ResetConnections(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	removed, err := h.connections.ResetConnections(c.Request.Context(), uid)
	if err != nil {
		h.logger.Error("failed to reset connections", zap.String("uid", uid), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) Relationship(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	rel, err := h.connections.Relationship(c.Request.Context(), uid, c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rel)
}

func (h *Handler) Sync(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	repairs, err := h.connections.SyncAcceptedConnections(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repairs": repairs})
}
