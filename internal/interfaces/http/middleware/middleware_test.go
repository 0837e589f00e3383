package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestRequestID(t *testing.T) {
	t.Run("generates an ID when the header is absent", func(t *testing.T) {
		r := newEngine(RequestID())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("echoes the inbound ID", func(t *testing.T) {
		r := newEngine(RequestID())
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	})
}

func TestCORSWithConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example.com"}

	t.Run("preflight from an allowed origin", func(t *testing.T) {
		r := newEngine(CORSWithConfig(cfg))
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-User-ID")
	})

	t.Run("disallowed origin gets no CORS headers", func(t *testing.T) {
		r := newEngine(CORSWithConfig(cfg))
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty allowlist rejects cross-origin", func(t *testing.T) {
		r := newEngine(CORSWithConfig(DefaultCORSConfig()))
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecure(t *testing.T) {
	r := newEngine(Secure())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(10))
	r.POST("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader(strings.Repeat("x", 64)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader("ok"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	t.Run("refuses once the window is exhausted", func(t *testing.T) {
		r := newEngine(RateLimit(NewRateLimiter(2, time.Minute)))

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
			require.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("keys are scoped per user", func(t *testing.T) {
		r := newEngine(RateLimit(NewRateLimiter(1, time.Minute)))

		first := httptest.NewRequest(http.MethodGet, "/ping", nil)
		first.Header.Set("X-User-ID", "6f1c7a0e-0001-4a4a-9a9a-000000000001")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, first)
		require.Equal(t, http.StatusOK, w.Code)

		second := httptest.NewRequest(http.MethodGet, "/ping", nil)
		second.Header.Set("X-User-ID", "6f1c7a0e-0001-4a4a-9a9a-000000000002")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, second)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("remaining resets after the window", func(t *testing.T) {
		rl := NewRateLimiter(3, 10*time.Millisecond)
		require.True(t, rl.Allow("k"))
		require.True(t, rl.Allow("k"))
		assert.Equal(t, 1, rl.Remaining("k"))

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, 3, rl.Remaining("k"))
		assert.True(t, rl.Allow("k"))
	})
}

func TestIsValidUserID(t *testing.T) {
	assert.True(t, isValidUserID("6f1c7a0e-0001-4a4a-9a9a-000000000001"))
	assert.False(t, isValidUserID(""))
	assert.False(t, isValidUserID("alice"))
	assert.False(t, isValidUserID("6f1c7a0e-0001-4a4a-9a9a-000000000001; DROP TABLE"))
	assert.False(t, isValidUserID(strings.Repeat("a", MaxUserIDLength+1)))
}

func TestGetRequestIDTruncatesHeader(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ping", nil)
	c.Request.Header.Set("X-Request-ID", strings.Repeat("a", MaxRequestIDLength+50))

	assert.Len(t, getRequestID(c), MaxRequestIDLength)
}

func TestTracingDisabledPassesThrough(t *testing.T) {
	r := newEngine(TracingWithConfig(TracingConfig{Enabled: false}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics(t *testing.T) {
	collect := func(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
		t.Helper()
		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		return rm
	}

	findMetric := func(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
		for _, sm := range rm.ScopeMetrics {
			for i := range sm.Metrics {
				if sm.Metrics[i].Name == name {
					return &sm.Metrics[i]
				}
			}
		}
		return nil
	}

	t.Run("counts requests by route pattern", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

		r := gin.New()
		r.Use(HTTPMetricsWithMeter(meter, true))
		r.GET("/accounts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/abc", nil))

		rm := collect(t, reader)
		m := findMetric(rm, "http_server_request_total")
		require.NotNil(t, m)

		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		dp := sum.DataPoints[0]
		assert.Equal(t, int64(1), dp.Value)

		route, _ := dp.Attributes.Value("http.route")
		assert.Equal(t, "/accounts/:id", route.AsString())
	})

	t.Run("only a valid UUID becomes a user_id label", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

		r := gin.New()
		r.Use(HTTPMetricsWithMeter(meter, true))
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-User-ID", "not-a-uuid")
		r.ServeHTTP(httptest.NewRecorder(), req)

		req = httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-User-ID", "6f1c7a0e-0001-4a4a-9a9a-000000000001")
		r.ServeHTTP(httptest.NewRecorder(), req)

		rm := collect(t, reader)
		m := findMetric(rm, "http_server_request_total")
		require.NotNil(t, m)
		sum := m.Data.(metricdata.Sum[int64])

		withUser := 0
		for _, dp := range sum.DataPoints {
			if v, ok := dp.Attributes.Value("user_id"); ok {
				withUser++
				assert.Equal(t, "6f1c7a0e-0001-4a4a-9a9a-000000000001", v.AsString())
			}
		}
		assert.Equal(t, 1, withUser)
	})

	t.Run("disabled config is a no-op", func(t *testing.T) {
		r := newEngine(HTTPMetrics(HTTPMetricsConfig{Enabled: false}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
