package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	profiles := rg.Group("/profiles")
	profiles.GET("/me", h.GetMyProfile)
	profiles.PUT("/me", h.UpdateMyProfile)
	profiles.PUT("/me/showcase", h.UpdateShowcase)
	profiles.DELETE("/me", h.DeleteMyProfile)
	profiles.POST("/me/badges", h.AddBadge)
	profiles.DELETE("/me/badges/:type", h.RemoveBadge)
	profiles.POST("/badges/lookup", h.LookupBadges)
	profiles.GET("/:uid", h.GetProfile)
	profiles.POST("/:uid/badges/:type/verify", h.VerifyBadge)
}
