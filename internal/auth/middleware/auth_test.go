package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	authctx "github.com/folio-social/folio-backend/internal/auth"
)

type fakeVerifier struct {
	tokens map[string]*auth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if t, ok := f.tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/whoami", func(c *gin.Context) {
		id, _ := authctx.CurrentIdentity(c)
		c.JSON(http.StatusOK, id)
	})
	return r
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]*auth.Token{
		"good": {UID: "uid-1", Claims: map[string]interface{}{
			"email": "alex@example.com", "name": "Alex", "admin": true,
		}},
	}}
	r := newEngine(FirebaseAuthMiddleware(verifier, zap.NewNop()))

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"uid":"uid-1","email":"alex@example.com","displayName":"Alex","photoURL":"","admin":true}`, w.Body.String())
	})

	t.Run("token query parameter", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami?token=good", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestDevAuthMiddleware(t *testing.T) {
	r := newEngine(DevAuthMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-User-Id", "dev-1")
	req.Header.Set("X-User-Name", "Dev")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"dev-1","email":"","displayName":"Dev","photoURL":"","admin":false}`, w.Body.String())
}

func TestDevAuthMiddleware_QueryIdentity(t *testing.T) {
	r := newEngine(DevAuthMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami?user=viewed", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami?as=dev-2&user=viewed", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"dev-2"`)

	req := httptest.NewRequest(http.MethodGet, "/whoami?as=dev-2", nil)
	req.Header.Set("X-User-Id", "dev-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"uid":"dev-1"`)
}
