package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/apperr"
	authctx "github.com/folio-social/folio-backend/internal/auth"
	"github.com/folio-social/folio-backend/internal/profiles/domain"
)

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
}

// GetMyProfile returns the caller's profile. needsSetup is true for new users.
func (h *Handler) GetMyProfile(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	p, err := h.profiles.GetProfile(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, "needsSetup": p == nil})
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.profiles.GetProfile(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) UpdateMyProfile(c *gin.Context) {
	id, _ := authctx.CurrentIdentity(c)

	var req domain.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.profiles.UpdateProfile(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) UpdateShowcase(c *gin.Context) {
	id, _ := authctx.CurrentIdentity(c)

	var req showcaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.profiles.UpdateShowcase(c.Request.Context(), id, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) DeleteMyProfile(c *gin.Context) {
	uid := authctx.UserFirebaseUID(c)
	ctx := c.Request.Context()

	for _, hook := range h.onDelete {
		if err := hook(ctx, uid); err != nil {
			h.logger.Error("profile delete hook failed", zap.String("uid", uid), zap.Error(err))
			respondError(c, err)
			return
		}
	}
	if err := h.profiles.DeleteProfile(ctx, uid); err != nil {
		h.logger.Error("failed to delete profile", zap.String("uid", uid), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile deleted"})
}

func (h *Handler) AddBadge(c *gin.Context) {
	id, _ := authctx.CurrentIdentity(c)

	var req domain.BadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.profiles.AddBadge(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) RemoveBadge(c *gin.Context) {
	id, _ := authctx.CurrentIdentity(c)

	p, err := h.profiles.RemoveBadge(c.Request.Context(), id, domain.BadgeType(c.Param("type")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) VerifyBadge(c *gin.Context) {
	caller, _ := authctx.CurrentIdentity(c)

	p, err := h.profiles.VerifyBadge(c.Request.Context(), caller, c.Param("uid"), domain.BadgeType(c.Param("type")))
	if err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("badge verified",
		zap.String("admin", caller.UID),
		zap.String("uid", c.Param("uid")),
		zap.String("type", c.Param("type")),
	)
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) LookupBadges(c *gin.Context) {
	var req badgeLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userIds is required"})
		return
	}

	badges, err := h.profiles.BadgesFor(c.Request.Context(), req.UserIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges})
}
