package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	posts := rg.Group("/posts")
	posts.GET("", h.ListPosts)
	posts.POST("", h.CreatePost)
	posts.GET("/:id", h.GetPost)
	posts.DELETE("/:id", h.DeletePost)
	posts.POST("/:id/like", h.ToggleLike)
	posts.POST("/:id/view", h.RecordView)
	posts.GET("/:id/comments", h.ListComments)
	posts.POST("/:id/comments", h.AddComment)

	rg.DELETE("/comments/:id", h.DeleteComment)
}
