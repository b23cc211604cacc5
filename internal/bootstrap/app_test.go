package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/config"
)

func testConfig(redisAddr string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0"},
		App:    config.AppConfig{ServiceName: "folio-backend", Environment: "test", LogLevel: "info", Version: "test"},
		Auth:   config.AuthConfig{Mode: config.AuthDev},
		Store:  config.StoreConfig{Backend: config.StoreRedis},
		Redis:  config.RedisConfig{Addr: redisAddr, ProfileCacheTTL: time.Hour},
		Media:  config.MediaConfig{MaxWidth: 1200, MaxHeight: 1200, Quality: 0.8, MaxSizeKB: 200},
		Notifications: config.NotificationConfig{
			PollInterval: 30 * time.Second,
			PanelLimit:   50,
		},
		Sync: config.SyncConfig{Schedule: "0 */5 * * * *", Lookback: time.Hour},
	}
}

func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)

	ctx := context.Background()
	app, err := New(ctx, testConfig(mr.Addr()), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	r, err := app.Router(ctx)
	require.NoError(t, err)
	return r
}

func call(t *testing.T, r *gin.Engine, method, path, uid, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != "" {
		req.Header.Set("X-User-Id", uid)
		req.Header.Set("X-User-Name", strings.ToUpper(uid[:1])+uid[1:])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndMetricsArePublic(t *testing.T) {
	r := newTestApp(t)

	w := call(t, r, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)

	w = call(t, r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(t, r, http.MethodGet, "/api/v1/notifications/count", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_FeedActivityReachesNotifications(t *testing.T) {
	r := newTestApp(t)

	w := call(t, r, http.MethodPut, "/api/v1/profiles/me", "alex", `{"profileName":"Alex"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, r, http.MethodPost, "/api/v1/posts", "alex", `{"content":"first project is live"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	require.NotEmpty(t, post.ID)

	w = call(t, r, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", "bea", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, r, http.MethodPost, "/api/v1/connections/requests", "bea", `{"toUserId":"alex"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, r, http.MethodGet, "/api/v1/notifications/count", "alex", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	w = call(t, r, http.MethodGet, "/api/v1/notifications/count", "bea", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())
}

func TestNew_UnknownBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(mr.Addr())
	cfg.Store.Backend = "mongo"

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"https://folio.example"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://folio.example"}, cfg.AllowOrigins)
	assert.True(t, cfg.AllowCredentials)
}
