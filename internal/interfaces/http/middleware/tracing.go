package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MaxRequestIDLength caps request IDs taken from headers.
	MaxRequestIDLength = 128
	// MaxUserIDLength caps the identity header value.
	MaxUserIDLength = 64
)

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig wraps otelgin and enriches each server span with
// request_id and, when the X-User-ID header carries a valid UUID, user_id.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	base := otelgin.Middleware(cfg.ServiceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if requestID := getRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if userID := getUserID(c); userID != "" {
			span.SetAttributes(attribute.String("user_id", userID))
		}
	}
}

// getRequestID prefers the value set by the RequestID middleware and falls
// back to the header, truncated to MaxRequestIDLength.
func getRequestID(c *gin.Context) string {
	if v, exists := c.Get("request_id"); exists {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > MaxRequestIDLength {
		return headerID[:MaxRequestIDLength]
	}
	return headerID
}

// getUserID returns the X-User-ID header value when it is a well-formed
// UUID, and "" otherwise. Invalid values never reach span attributes or
// metric labels.
func getUserID(c *gin.Context) string {
	userID := c.GetHeader("X-User-ID")
	if isValidUserID(userID) {
		return userID
	}
	return ""
}

func isValidUserID(userID string) bool {
	if userID == "" || len(userID) > MaxUserIDLength {
		return false
	}
	return uuidRegex.MatchString(userID)
}
