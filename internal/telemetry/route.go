package telemetry

import (
	"net/http"

	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// WithHTTPRoute stamps the matched mux pattern onto the current span.
// otelhttp wraps the whole mux and never learns which route matched, so
// without this every request collapses into one server span name.
func WithHTTPRoute(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := mux.Handler(r); pattern != "" {
			span := oteltrace.SpanFromContext(r.Context())
			span.SetAttributes(semconv.HTTPRoute(pattern))
		}
		mux.ServeHTTP(w, r)
	})
}
