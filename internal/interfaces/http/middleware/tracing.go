package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostly/ordercore/internal/domain/access"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds the request id copied onto spans
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing wraps otelgin. Probes and the long-lived event stream are not
// traced: a span per stream would stay open for the whole session.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		switch r.URL.Path {
		case "/health", "/ready", "/api/v1/events/stream":
			return false
		}
		return true
	}))
}

// tagSpan adds the acting principal and request id to the active span
func tagSpan(c *gin.Context, p access.Principal) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("user_id", p.UserID),
		attribute.String("role", string(p.Role)),
	}
	if p.HasTenant() {
		attrs = append(attrs, attribute.String("tenant_id", p.TenantID))
	}
	if id := c.GetString("request_id"); id != "" {
		if len(id) > MaxRequestIDLength {
			id = id[:MaxRequestIDLength]
		}
		attrs = append(attrs, attribute.String("request_id", id))
	}
	span.SetAttributes(attrs...)
}
