package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Tracing wraps each request in an otel span named after chi's matched route
// pattern ("POST /api/v1/payment-intents/{id}/refund"), keeping span names
// low-cardinality even when the path carries intent or account ids.
func Tracing() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inner := http.HandlerFunc(func(iw http.ResponseWriter, ir *http.Request) {
				// The route pattern is only known once chi has matched, so
				// the span name is resolved inside the handler chain.
				name := ir.Method + " " + ir.URL.Path
				if rctx := chi.RouteContext(ir.Context()); rctx != nil && rctx.RoutePattern() != "" {
					name = ir.Method + " " + rctx.RoutePattern()
				}
				otelhttp.NewHandler(next, name).ServeHTTP(iw, ir)
			})
			inner.ServeHTTP(w, r)
		})
	}
}
