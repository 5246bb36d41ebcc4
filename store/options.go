package store

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jacentio/todo-api/store"

// Option is a functional option for configuring a [Store].
type Option func(*options)

type options struct {
	tracerProvider trace.TracerProvider
}

func newOptions() *options {
	return &options{
		tracerProvider: otel.GetTracerProvider(),
	}
}

// WithTracerProvider sets the tracer provider used for store spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}
