package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/calebdunn/studypath-backend/internal/logger"
)

// RequestLogger logs one line per request with latency, status and the trace
// id when a span is active.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	l := log.With("middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
			fields = append(fields, "trace_id", span.SpanContext().TraceID().String())
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
			l.Warn("Request failed", fields...)
			return
		}
		l.Info("Request handled", fields...)
	}
}
