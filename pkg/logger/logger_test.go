package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/daycare-api/pkg/config"
	"github.com/noah-isme/daycare-api/pkg/middleware/requestid"
)

func TestNew(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "warn"}})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = New(&config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "chatty"}})
	assert.Error(t, err)

	_, err = New(&config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Format: "xml"}})
	assert.Error(t, err)
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(requestid.Middleware())
	r.Use(GinMiddleware(zap.New(core), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/children/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/health", "/children/c1", "/boom", "/missing"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Request-ID", "req-1")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.All()
	require.Len(t, entries, 3)

	ok := entries[0]
	assert.Equal(t, zapcore.InfoLevel, ok.Level)
	fields := ok.ContextMap()
	assert.Equal(t, "/children/:id", fields["route"])
	assert.Equal(t, "/children/c1", fields["path"])
	assert.Equal(t, "req-1", fields["request_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	_, hasRoute := entries[2].ContextMap()["route"]
	assert.False(t, hasRoute)
}
