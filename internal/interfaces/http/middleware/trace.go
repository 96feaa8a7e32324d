package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"layr-ai-api/pkg/logger"
)

// Trace OpenTelemetry 追踪中间件；skipPaths 中的请求不产生 span
func Trace(serviceName string, skipPaths ...string) gin.HandlerFunc {
	skip := pathSet(skipPaths)
	return otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			_, ok := skip[r.URL.Path]
			return !ok
		}),
	)
}

// TraceContext 注入 trace_id 到日志上下文与响应头，并把请求 ID 记到 span 上
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if sc := span.SpanContext(); sc.IsValid() {
			traceID := sc.TraceID().String()
			spanID := sc.SpanID().String()

			c.Set("trace_id", traceID)

			ctx := logger.WithContext(c.Request.Context(), logger.TraceIDKey, traceID)
			ctx = logger.WithContext(ctx, logger.SpanIDKey, spanID)
			c.Request = c.Request.WithContext(ctx)

			if id := RequestIDFrom(c); id != "" {
				span.SetAttributes(attribute.String("http.request_id", id))
			}
			c.Header("X-Trace-ID", traceID)
		}

		c.Next()
	}
}
