// Package middleware provides the HTTP middleware an fsroute server runs
// in front of its routes.
//
// # Prometheus Metrics
//
// Metrics records requests by method, route pattern and status, and doubles
// as the pipeline.Observer for response outcomes:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r.Use(m.Handler)
//	table, err := router.Compile(fsys, modules, router.WithObserver(m))
//
// Collected series, with the default namespace:
//   - fsroute_http_requests_total: requests by method, route and status
//   - fsroute_http_request_duration_seconds: request latency
//   - fsroute_http_requests_in_flight: requests being served
//   - fsroute_response_bytes_total: body bytes committed per route
//   - fsroute_stream_chunks_total: chunks written by streaming handlers
//   - fsroute_pipeline_events_total: misuse warnings and recovered failures
//   - fsroute_rate_limited_total: requests rejected by the rate limiter
//
// # OpenTelemetry
//
// Tracing starts a server span per request, named after the matched route
// pattern once routing has happened. The span travels in the request
// context, so deferred handlers can pass it to their own clients.
//
// # Security
//
// CORS and SecurityHeaders set the cross-origin and hardening headers.
package middleware
