// Package observability holds no code. Its subpackages are wired by both
// binaries:
//
//   - logging builds the slog logger and redacts credentials
//   - metrics owns the tlwd_* Prometheus collectors
//   - tracing sets up OpenTelemetry and the server span middleware
package observability
