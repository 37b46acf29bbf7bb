// Package tracing wires OpenTelemetry into the API.
//
// Init installs an SDK tracer provider so every request gets a real trace id
// even when no exporter is configured. Middleware opens one server span per
// request and StartClient one span per outbound provider call.
//
//	shutdown := tracing.Init(config.GetEnvBool("TRACING_ENABLED", false), "tlwd-api")
//	defer shutdown(context.Background())
//	handler := tracing.Middleware(mux)
package tracing
