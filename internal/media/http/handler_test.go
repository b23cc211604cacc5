package http

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/media"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(media.DefaultOptions(), zap.NewNop()).Register(r.Group("/api/v1"))
	return r
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(t *testing.T, r *gin.Engine, kind, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if kind != "" {
		require.NoError(t, mw.WriteField("kind", kind))
	}
	if data != nil {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpload_ProfilePictureIsDownsized(t *testing.T) {
	r := setupRouter()

	w := upload(t, r, KindProfile, "me.png", pngBytes(t, 800, 600))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ContentType string `json:"contentType"`
		DataURL     string `json:"dataUrl"`
		Width       int    `json:"width"`
		Height      int    `json:"height"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "image/jpeg", resp.ContentType)
	assert.True(t, strings.HasPrefix(resp.DataURL, "data:image/jpeg;base64,"))
	assert.Equal(t, 400, resp.Width)
	assert.Equal(t, 300, resp.Height)
}

func TestUpload_PostKeepsLargerBox(t *testing.T) {
	r := setupRouter()

	w := upload(t, r, KindPost, "shot.png", pngBytes(t, 800, 600))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"width":800`)
}

func TestUpload_Rejections(t *testing.T) {
	r := setupRouter()

	w := upload(t, r, "banner", "x.png", pngBytes(t, 10, 10))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, r, KindPost, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, r, KindPost, "notes.txt", []byte("just some text, not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not a supported image")
}
