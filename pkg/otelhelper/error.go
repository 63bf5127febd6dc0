package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("error_occurred", trace.WithAttributes(
		attrs...,
	))
}

// SetStepStatus marks the span with the outcome of a step. Only critical
// errors flag the span as failed.
func SetStepStatus(span trace.Span, status string, message string) {
	span.SetAttributes(attribute.String(StepStatusKey, status))

	if status == "critical_error" {
		span.SetStatus(codes.Error, message)
	}
}
