package observability

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoOpLogger discards everything. For tests.
var NoOpLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoOpTracer records nothing. For tests.
func NoOpTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}
