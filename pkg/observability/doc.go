// Package observability provides structured logging, Prometheus metrics,
// health probes, optional OpenTelemetry tracing, and graceful shutdown
// helpers shared by the server binaries.
package observability
