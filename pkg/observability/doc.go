// Package observability provides structured logging, Prometheus metrics,
// health checks, graceful shutdown, and optional OpenTelemetry tracing for
// the finance reporting backend.
//
// # Logging
//
// The Logger wraps stdlib slog with a JSON handler:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("company_id", companyID).Info("report served")
//
// Request-scoped loggers pick up the request id and user id from the
// context via FromContext.
//
// # Metrics
//
// NewMetrics registers HTTP, authorization, database, and cache metrics on
// a Prometheus registry. The health server exposes them on /metrics.
//
// # Health
//
// HealthChecker serves /health (liveness) and /ready (readiness, pings the
// finance database).
package observability
