package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelprint/backend/internal/infrastructure/config"
	"github.com/labelprint/backend/internal/infrastructure/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(origins ...string) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type"},
	}))
	router.GET("/api/status", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return router
}

func TestCORSWithConfig(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Origin", "http://192.168.0.20:8080")
		w := httptest.NewRecorder()
		corsRouter("*").ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("listed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Origin", "http://tablet.local")
		w := httptest.NewRecorder()
		corsRouter("http://tablet.local").ServeHTTP(w, req)

		assert.Equal(t, "http://tablet.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("Origin", "http://elsewhere")
		w := httptest.NewRecorder()
		corsRouter("http://tablet.local").ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/status", nil)
		req.Header.Set("Origin", "http://tablet.local")
		w := httptest.NewRecorder()
		corsRouter("*").ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSConfigFrom(t *testing.T) {
	cfg := CORSConfigFrom(&config.HTTPConfig{
		CORSAllowOrigins: []string{"*"},
		CORSAllowMethods: []string{"GET"},
		CORSAllowHeaders: []string{"Content-Type"},
	})
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.Contains(t, cfg.ExposeHeaders, "X-Request-ID")
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/api/status", func(c *gin.Context) {
		assert.Equal(t, c.GetString("request_id"), logger.GetRequestID(c.Request.Context()))
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("keeps the client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set("X-Request-ID", "client-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "client-1", w.Body.String())
		assert.Equal(t, "client-1", w.Header().Get("X-Request-ID"))
	})

	t.Run("generates one", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

		require.NotEmpty(t, w.Body.String())
		assert.Len(t, w.Body.String(), 36)
	})
}
