package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antony-QP/React-Ecommerce-Backend/internal/config"
	"github.com/Antony-QP/React-Ecommerce-Backend/pkg/logger"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("STORE_BACKEND", config.StoreMemory)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MEMORY_ADMIN_EMAIL", "admin@example.com")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNewApp_MemoryBackend(t *testing.T) {
	a, err := NewApp(memoryConfig(t), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)

	assert.Nil(t, a.mongoClient)
	assert.Nil(t, a.rdb)
	assert.Nil(t, a.producer)

	h := a.httpServer.Handler

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search/filters", strings.NewReader(`{"stars":4}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/product", strings.NewReader(`{"title":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewApp_CacheUnreachable(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.CacheEnabled = true
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := NewApp(cfg, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestNewApp_WithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig(t)
	cfg.CacheEnabled = true
	cfg.RedisAddr = mr.Addr()

	a, err := NewApp(cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)
	require.NotNil(t, a.rdb)

	rec := httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search/filters", strings.NewReader(`{"brand":"Apple"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis"`)
}
