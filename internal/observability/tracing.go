package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for store spans.
const TracerName = "semstore"

// Tracing emits one OpenTelemetry span per completed operation. Since hooks
// have no start/finish pairing, the span is created at completion time with a
// back-dated start timestamp covering the measured duration.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing creates tracing hooks using the globally registered tracer
// provider (a no-op provider unless the application installed one).
func NewTracing() *Tracing {
	return &Tracing{tracer: otel.Tracer(TracerName)}
}

func (t *Tracing) OnStart(ctx context.Context, op string, fields Fields) {}

func (t *Tracing) OnSuccess(ctx context.Context, op string, fields Fields, elapsed time.Duration) {
	_, span := t.startSpan(ctx, op, fields, elapsed)
	span.SetStatus(codes.Ok, "")
	span.End()
}

func (t *Tracing) OnFailure(ctx context.Context, op string, fields Fields, elapsed time.Duration, err error) {
	_, span := t.startSpan(ctx, op, fields, elapsed)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func (t *Tracing) startSpan(ctx context.Context, op string, fields Fields, elapsed time.Duration) (context.Context, trace.Span) {
	attrs := make([]attribute.KeyValue, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, attribute.String("semstore."+k, fmt.Sprint(v)))
	}
	return t.tracer.Start(ctx, "semstore."+op,
		trace.WithTimestamp(time.Now().Add(-elapsed)),
		trace.WithAttributes(attrs...),
	)
}
