package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	conns := rg.Group("/connections")
	conns.GET("", h.ListConnections)
	conns.DELETE("", h.ResetConnections)
	conns.DELETE("/:uid", h.RemoveConnection)
	conns.GET("/status/:uid", h.Relationship)
	conns.POST("/sync", h.Sync)

	conns.GET("/requests", h.ListRequests)
	conns.GET("/requests/count", h.CountRequests)
	conns.POST("/requests", h.SendRequest)
	conns.DELETE("/requests/:uid", h.CancelRequest)
	conns.POST("/requests/:id/respond", h.RespondToRequest)
}
