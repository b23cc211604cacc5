package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/apperr"
	authctx "github.com/folio-social/folio-backend/internal/auth"
	"github.com/folio-social/folio-backend/internal/feed/domain"
)

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
}

func (h *Handler) ListPosts(c *gin.Context) {
	var lq listQuery
	if err := c.ShouldBindQuery(&lq); err != nil {
		respondError(c, domain.ErrInvalidLimit)
		return
	}

	q := domain.Query{Limit: lq.Limit, UserID: lq.User}
	if lq.Before != "" {
		if err := domain.ParseCursor(lq.Before, &q); err != nil {
			respondError(c, err)
			return
		}
	}

	uid := authctx.UserFirebaseUID(c)
	page, err := h.feed.ListPosts(c.Request.Context(), uid, q)
	if err != nil {
		if apperr.IsSoft(err) {
			h.logger.Warn("feed unavailable", zap.String("uid", uid), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"posts": []*domain.Post{}, "degraded": true})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) CreatePost(c *gin.Context) {
	id, _ := authctx.CurrentIdentity(c)

	var body domain.NewPost
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.feed.CreatePost(c.Request.Context(), id, body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.feed.GetPost(c.Request.Context(), authctx.UserFirebaseUID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(c *gin.Context) {
	id, _ := authctx.CurrentIdentity(c)
	if err := h.feed.DeletePost(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ToggleLike(c *gin.Context) {
	id, _ := authctx.CurrentIdentity(c)
	res, err := h.feed.ToggleLike(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RecordView always succeeds; view counts are best-effort.
func (h *Handler) RecordView(c *gin.Context) {
	h.feed.RecordView(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListComments(c *gin.Context) {
	threads, err := h.feed.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": threads})
}

func (h *Handler) AddComment(c *gin.Context) {
	id, _ := authctx.CurrentIdentity(c)

	var body domain.NewComment
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	comment, err := h.feed.AddComment(c.Request.Context(), id, c.Param("id"), body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, _ := authctx.CurrentIdentity(c)
	if err := h.feed.DeleteComment(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
