package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func observedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log, err := New(&Config{Level: "debug", Format: format, Output: "stdout", TimeFormat: time.RFC3339})
		require.NoError(t, err)
		require.NotNil(t, log)
		assert.True(t, log.Core().Enabled(zap.DebugLevel))
	}

	log, err := New(&Config{Level: "warn", Format: "json", Output: "stderr", TimeFormat: time.RFC3339})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, "info", parseLevel("nonsense").String())
	assert.Equal(t, "warn", parseLevel("WARNING").String())
}

func TestGinMiddleware(t *testing.T) {
	log, logs := observedLogger(zapcore.InfoLevel)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "req-7"); c.Next() })
	r.Use(GinMiddleware(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel.String(), entries[0].Level.String())
	assert.Equal(t, zap.ErrorLevel.String(), entries[1].Level.String())
	assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
}

func TestRecovery(t *testing.T) {
	log, logs := observedLogger(zapcore.ErrorLevel)

	r := gin.New()
	r.Use(Recovery(log))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, logs.All(), 1)
	assert.Equal(t, "Panic recovered", logs.All()[0].Message)
}

func TestGetGinLoggerFallsBackToNop(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}

func TestGormLoggerTrace(t *testing.T) {
	fc := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("errors are logged with the request ID", func(t *testing.T) {
		log, logs := observedLogger(zapcore.DebugLevel)
		gl := NewGormLogger(log, gormlogger.Error)

		ctx := ContextWithRequestID(context.Background(), "req-9")
		gl.Trace(ctx, time.Now(), fc, errors.New("bad query"))

		require.Len(t, logs.All(), 1)
		entry := logs.All()[0]
		assert.Equal(t, "SQL Error", entry.Message)
		assert.Equal(t, "req-9", entry.ContextMap()["request_id"])
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		log, logs := observedLogger(zapcore.DebugLevel)
		gl := NewGormLogger(log, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)
		assert.Empty(t, logs.All())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		log, logs := observedLogger(zapcore.DebugLevel)
		gl := NewGormLogger(log, gormlogger.Warn)

		gl.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)

		require.Len(t, logs.All(), 1)
		assert.Contains(t, logs.All()[0].Message, "SLOW SQL")
	})

	t.Run("silent drops everything", func(t *testing.T) {
		log, logs := observedLogger(zapcore.DebugLevel)
		gl := NewGormLogger(log, gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), fc, errors.New("bad query"))
		assert.Empty(t, logs.All())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
