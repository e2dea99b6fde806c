package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/recipebook-backend/internal/platform/ctxutil"
)

// Correlation headers accepted from callers and echoed on every response.
const (
	HeaderRequestID = "X-Request-Id"
	HeaderTraceID   = "X-Trace-Id"
)

const maxCorrelationIDLen = 128

// Correlate tags the request context with a request id and a trace id.
// Caller-supplied ids win when they are short printable ASCII; otherwise the
// trace id comes from the active span, and failing that both are generated.
func Correlate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		td := &ctxutil.TraceData{
			RequestID: callerID(c.GetHeader(HeaderRequestID)),
			TraceID:   callerID(c.GetHeader(HeaderTraceID)),
		}
		if td.RequestID == "" {
			td.RequestID = uuid.NewString()
		}
		if td.TraceID == "" {
			if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
				td.TraceID = sc.TraceID().String()
			} else {
				td.TraceID = strings.ReplaceAll(uuid.NewString(), "-", "")
			}
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, td))
		h := c.Writer.Header()
		h.Set(HeaderRequestID, td.RequestID)
		h.Set(HeaderTraceID, td.TraceID)
		c.Next()
	}
}

func callerID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxCorrelationIDLen {
		return ""
	}
	for i := 0; i < len(v); i++ {
		if v[i] <= ' ' || v[i] > '~' {
			return ""
		}
	}
	return v
}
