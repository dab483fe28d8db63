// Package server provides the HTTP server: Gin mounted on a ServeMux,
// wrapped by net/http middleware and served over HTTP/1.1 and h2c.
//
// # Middleware
//
// Server-level middleware (server/middleware), installed by ApplyMiddleware:
//
//   - Recovery: panic recovery, 500 in the error envelope
//   - RequestID: X-Request-Id generation and propagation into log context
//   - CORS: every origin, method and header by default
//   - BodySizeLimit: optional upload cap answered with 413
//   - RequestLogger: method, path, status and duration per request
//   - Metrics: OpenTelemetry request counters and latency
//
// Route-level Gin middleware: Auth (bearer token) and RateLimit.
//
// # Endpoints
//
// RegisterDefaultEndpoints (server/endpoint) adds /health, /liveness,
// /readiness, /info, /version and /metrics.
package server
