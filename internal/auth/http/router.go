package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/sync", h.SyncUser)
	rg.GET("/auth/me", h.Me)
	rg.GET("/users/search", h.SearchUsers)
}
