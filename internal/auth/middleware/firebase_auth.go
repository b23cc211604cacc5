package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authctx "github.com/folio-social/folio-backend/internal/auth"
	"github.com/folio-social/folio-backend/internal/auth/domain"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware validates Firebase ID tokens and stores the caller identity.
// Browsers cannot set headers on websocket upgrades, so the token may also
// arrive as the "token" query parameter.
func FirebaseAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}

		decoded, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			logger.Debug("token verification failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		authctx.SetIdentity(c, identityFromToken(decoded))
		c.Next()
	}
}

func identityFromToken(t *auth.Token) domain.Identity {
	id := domain.Identity{UID: t.UID}
	if v, ok := t.Claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := t.Claims["name"].(string); ok {
		id.DisplayName = v
	}
	if v, ok := t.Claims["picture"].(string); ok {
		id.PhotoURL = v
	}
	if v, ok := t.Claims["admin"].(bool); ok {
		id.Admin = v
	}
	return id
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return strings.TrimSpace(c.Query("token"))
}
