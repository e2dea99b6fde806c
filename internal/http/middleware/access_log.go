package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/recipebook-backend/internal/platform/ctxutil"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

// quietRoutes are polled by infrastructure and only logged at debug.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// AccessLog writes one entry per request after the handler chain returns.
// Routes are logged by their gin pattern so /api/recipes/:id stays one series.
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		kv := []interface{}{
			"route", route,
			"method", c.Request.Method,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes_out", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		}
		if route == "unmatched" {
			kv = append(kv, "path", c.Request.URL.Path)
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			kv = append(kv, "request_id", td.RequestID, "trace_id", td.TraceID)
		}
		if uid := ctxutil.UserID(c.Request.Context()); uid != uuid.Nil {
			kv = append(kv, "user_id", uid.String())
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		accessLevel(log, route, status)("request served", kv...)
	}
}

func accessLevel(log *logger.Logger, route string, status int) func(string, ...interface{}) {
	switch {
	case status >= 500:
		return log.Error
	case status >= 400:
		return log.Warn
	case quietRoutes[route]:
		return log.Debug
	default:
		return log.Info
	}
}
