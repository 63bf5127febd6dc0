package otelhelper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	return recorder, provider
}

func TestStartSpan_SetsAttributes(t *testing.T) {
	recorder, provider := newRecorder()
	tracer := provider.Tracer("test")

	_, span := StartSpan(context.Background(), tracer, "flow.execute", attribute.String(FlowNameKey, "first_login"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "flow.execute", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String(FlowNameKey, "first_login"))
}

func TestSetError_RecordsErrorStatus(t *testing.T) {
	recorder, provider := newRecorder()

	_, span := provider.Tracer("test").Start(context.Background(), "step")
	SetError(span, errors.New("boom"), attribute.String(StepNameKey, "match_candidato"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestSetStepStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		wantCode codes.Code
	}{
		{"success", "success", codes.Unset},
		{"failed is not a span error", "failed", codes.Unset},
		{"critical", "critical_error", codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, provider := newRecorder()

			_, span := provider.Tracer("test").Start(context.Background(), "step")
			SetStepStatus(span, tt.status, "message")
			span.End()

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantCode, spans[0].Status().Code)
			assert.Contains(t, spans[0].Attributes(), attribute.String(StepStatusKey, tt.status))
		})
	}
}

func TestNoopTracer(t *testing.T) {
	_, span := StartSpan(context.Background(), NoopTracer(), "noop")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
}
