package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/folio-social/folio-backend/internal/auth/domain"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
	CtxIdentity    = "identity"
)

// SetIdentity stores the verified caller on the Gin context.
func SetIdentity(c *gin.Context, id domain.Identity) {
	c.Set(CtxFirebaseUID, id.UID)
	c.Set(CtxEmail, id.Email)
	c.Set(CtxIdentity, id)
}

// UserFirebaseUID extracts the Firebase UID set by the auth middleware.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// CurrentIdentity returns the caller, or false when the request is unauthenticated.
func CurrentIdentity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	if !ok || id.UID == "" {
		return domain.Identity{}, false
	}
	return id, true
}
