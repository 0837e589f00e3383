package logger

import "context"

type contextKey string

// requestIDKey carries the request ID on a context.Context so that
// logging below the HTTP layer, such as SQL traces, can correlate with
// the request log line.
const requestIDKey contextKey = "request_id"

// ContextWithRequestID stores the request ID on the context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}
