package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/apperr"
	"github.com/folio-social/folio-backend/internal/media"
)

const (
	KindProfile  = "profile"
	KindPost     = "post"
	KindShowcase = "showcase"

	profileMaxDimension = 400
	profileMaxSizeKB    = 100

	// multipart framing on top of the largest accepted file
	maxBodyOverhead = 1 << 20
)

type Handler struct {
	base   media.Options
	logger *zap.Logger
}

func New(base media.Options, logger *zap.Logger) *Handler {
	return &Handler{base: base, logger: logger}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/media", h.Upload)
}

// optionsFor returns the downsizing options for an upload kind.
func (h *Handler) optionsFor(kind string) (media.Options, bool) {
	switch kind {
	case KindProfile:
		opts := h.base
		opts.MaxWidth = min(opts.MaxWidth, profileMaxDimension)
		opts.MaxHeight = min(opts.MaxHeight, profileMaxDimension)
		opts.MaxSizeKB = min(opts.MaxSizeKB, profileMaxSizeKB)
		return opts, true
	case KindPost, KindShowcase, "":
		return h.base, true
	default:
		return media.Options{}, false
	}
}

// Upload accepts a multipart "file" and returns it as a data URL ready to be
// stored on a profile, showcase item or post.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxImageBytes+maxBodyOverhead)

	kind := c.PostForm("kind")
	opts, ok := h.optionsFor(kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be profile, post or showcase"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": media.ErrFileTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fh.Size > media.MaxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": media.ErrFileTooLarge.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.logger.Error("failed to open upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, media.MaxImageBytes+1))
	if err != nil {
		h.logger.Error("failed to read upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	enc, err := media.Process(data, opts)
	if err != nil {
		h.logger.Info("upload rejected",
			zap.String("kind", kind),
			zap.String("filename", fh.Filename),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contentType": enc.ContentType,
		"dataUrl":     enc.DataURL(),
		"width":       enc.Width,
		"height":      enc.Height,
		"bytes":       len(enc.Data),
	})
}
