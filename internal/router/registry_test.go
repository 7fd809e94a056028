package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/movie-review-api/config"
	"github.com/oksasatya/movie-review-api/internal/container"
	"github.com/oksasatya/movie-review-api/pkg/helpers"
)

type pingModule struct{}

func (pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func TestRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	reg := NewRegistry(engine)
	reg.Use(func(c *gin.Context) {
		c.Header("X-Seen", "1")
		c.Next()
	})
	reg.Add(pingModule{})
	reg.Fallback(func(c *gin.Context) { c.String(http.StatusOK, "fallback") })
	reg.RegisterAll()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Seen"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/somewhere", nil))
	assert.Equal(t, "fallback", w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Seen"))
}

func setupContainer(t *testing.T, cfg *config.Config) {
	t.Helper()
	// Connect does not dial; no request in these tests reaches the store.
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	container.SetConfig(cfg)
	container.SetLogger(helpers.NewNopLogger())
	container.SetMongoDB(client.Database("movie_review_test"))
	container.SetTokens(helpers.NewTokenIssuer("router-secret", cfg.TokenTTL))
	container.SetVerifier(nil)
}

func TestInitModules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"), []byte("spa"), 0o644))

	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("FRONTEND_DIST_DIR", dist)
	t.Setenv("MONGODB_URI", "mongodb://127.0.0.1:1")
	cfg := config.Load()
	setupContainer(t, cfg)

	engine := gin.New()
	reg := NewRegistry(engine)
	InitModules(reg)
	reg.RegisterAll()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "Movie Review API is running", health["message"])
	assert.Equal(t, "production", health["environment"])

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reviews/12", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "spa", w.Body.String())
}

func TestInitModules_NoStaticHostingOutsideProduction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("APP_ENV", "development")
	t.Setenv("FRONTEND_DIST_DIR", t.TempDir())
	setupContainer(t, config.Load())

	engine := gin.New()
	reg := NewRegistry(engine)
	InitModules(reg)
	reg.RegisterAll()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reviews/12", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInitModules_GoogleWithoutVerifier(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("APP_ENV", "development")
	setupContainer(t, config.Load())

	assert.Nil(t, buildAuthService().Verifier)

	engine := gin.New()
	reg := NewRegistry(engine)
	InitModules(reg)
	reg.RegisterAll()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{"credential":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid Google token", body["message"])
	assert.Equal(t, false, body["success"])
}
