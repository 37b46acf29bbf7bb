package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("tlwd-backend")

// GetTracer returns the process tracer.
func GetTracer() trace.Tracer {
	return tracer
}

// Init installs an always-sampling SDK provider and the W3C propagators when
// enabled. The returned function flushes and stops the provider. When
// disabled, the no-op global provider stays in place.
func Init(enabled bool, service string) func(context.Context) error {
	if !enabled {
		return func(context.Context) error { return nil }
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	tracer = tp.Tracer(service)
	return tp.Shutdown
}

// StartClient opens a client span for a call to an external provider
// (Paystack, Cloudinary, Resend). The returned func ends the span and marks
// it failed when err is non-nil.
//
//	ctx, end := tracing.StartClient(ctx, "paystack.verify", attribute.String("reference", ref))
//	defer func() { end(err) }()
func StartClient(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
