package middleware

import (
	"net/http"
	"time"

	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Path values the disease routes declare; copied onto the request span.
var diseasePathAttributes = map[string]string{
	"term": "disease.term",
	"code": "disease.orphacode",
}

// ObservabilityMiddleware adds OpenTelemetry tracing and metrics to HTTP requests.
// The route pattern and path values are only known once the mux has matched, so
// the span is renamed and tagged after the handler returns.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), "HTTP "+r.Method)
			defer span.End()

			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.String("http.request_id", RequestIDFromContext(r.Context())),
			)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			req := r.WithContext(ctx)
			start := time.Now()

			next.ServeHTTP(rw, req)

			duration := time.Since(start)

			// Use route pattern instead of raw path to avoid high cardinality
			route := req.Pattern
			if route == "" {
				route = "unmatched"
			}
			span.SetName(route)
			observability.SetSpanAttributes(span,
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rw.statusCode),
			)
			for name, key := range diseasePathAttributes {
				if value := req.PathValue(name); value != "" {
					observability.SetSpanAttributes(span, attribute.String(key, value))
				}
			}

			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rw.statusCode, duration)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
