package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authctx "github.com/folio-social/folio-backend/internal/auth"
	"github.com/folio-social/folio-backend/internal/auth/domain"
)

// DevAuthMiddleware trusts identity headers. Use this ONLY for local
// development and tests; config refuses it in production.
func DevAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = strings.TrimSpace(c.Query("as"))
		}
		if uid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-Id header"})
			c.Abort()
			return
		}

		authctx.SetIdentity(c, domain.Identity{
			UID:         uid,
			Email:       c.GetHeader("X-User-Email"),
			DisplayName: c.GetHeader("X-User-Name"),
			PhotoURL:    c.GetHeader("X-User-Photo"),
			Admin:       c.GetHeader("X-User-Admin") == "true",
		})
		c.Next()
	}
}
