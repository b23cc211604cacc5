package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	n := rg.Group("/notifications")
	n.GET("/summary", h.Summary)
	n.GET("/count", h.Count)
	n.GET("/ws", h.Stream)
	n.POST("/read-all", h.MarkAllRead)
	n.POST("/:id/read", h.MarkRead)
	n.DELETE("/:id", h.Delete)
}
