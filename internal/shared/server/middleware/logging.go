package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/tracing"
)

// Logging emits one request.complete line per request. Server errors log at
// error level, client errors at warn. Preflights and metrics scrapes are
// skipped.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"request_id":    RequestIDFromContext(c),
			"trace_id":      tracing.TraceID(c.Request.Context()),
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        status,
			"bytes":         c.Writer.Size(),
			"duration_ms":   float64(time.Since(start).Microseconds()) / 1000.0,
			"generation_id": c.GetString("generationId"),
			"template":      c.GetString("template"),
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("request.complete", fields)
		case status >= http.StatusBadRequest:
			telemetry.Warn("request.complete", fields)
		default:
			telemetry.Info("request.complete", fields)
		}
	}
}
