package common

import (
	"context"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Veraticus/roundup"

var (
	tracingMu      sync.RWMutex
	tracerProvider *sdktrace.TracerProvider
)

// InitTracing installs an OpenTelemetry tracer provider that writes finished
// spans to w. Spans are no-ops until this is called.
func InitTracing(w io.Writer, version string) error {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName("roundup"),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	tracingMu.Lock()
	tracerProvider = tp
	tracingMu.Unlock()

	return nil
}

// ShutdownTracing flushes and stops the tracer provider, if one was installed.
func ShutdownTracing(ctx context.Context) error {
	tracingMu.Lock()
	tp := tracerProvider
	tracerProvider = nil
	tracingMu.Unlock()

	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// Operation is a timed unit of work backed by a span.
type Operation struct {
	ctx   context.Context
	span  trace.Span
	name  string
	start time.Time
}

// StartOperation opens a span named name. fields are key/value pairs recorded
// as span attributes.
func StartOperation(ctx context.Context, name string, fields ...any) *Operation {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	span.SetAttributes(toAttributes(fields)...)

	return &Operation{
		ctx:   ctx,
		span:  span,
		name:  name,
		start: time.Now(),
	}
}

// Context returns the context carrying the operation's span.
func (o *Operation) Context() context.Context {
	return o.ctx
}

// End closes the span successfully and returns the elapsed time.
func (o *Operation) End(fields ...any) time.Duration {
	elapsed := time.Since(o.start)
	o.span.SetAttributes(toAttributes(fields)...)
	o.span.SetAttributes(attribute.Int64("duration_us", elapsed.Microseconds()))
	o.span.SetStatus(codes.Ok, "completed")
	o.span.End()

	LogDebug(o.ctx, "Operation completed", Fields{
		"operation":   o.name,
		"duration_us": elapsed.Microseconds(),
	})
	return elapsed
}

// EndWithError records err on the span and closes it.
func (o *Operation) EndWithError(err error) {
	elapsed := time.Since(o.start)
	o.span.RecordError(err)
	o.span.SetStatus(codes.Error, err.Error())
	o.span.End()

	LogError(o.ctx, err, "Operation failed", Fields{
		"operation":   o.name,
		"duration_us": elapsed.Microseconds(),
	})
}

func toAttributes(fields []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		}
	}
	return attrs
}
