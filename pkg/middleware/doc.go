// Package middleware provides HTTP middleware for silk servers.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware
//
// Both are plain func(http.Handler) http.Handler values and label by chi
// route pattern, so they are meant to be installed on a chi router.
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware starts a server span per request. The span
// context is available to handlers through r.Context().
//
//	r := chi.NewRouter()
//	r.Use(chimw.RequestID)
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// # Prometheus Metrics
//
// The Prometheus middleware collects request totals by route and status
// code, request duration by route, and the number of requests in flight:
//
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
package middleware
