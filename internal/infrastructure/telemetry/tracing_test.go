package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

type stringer struct{}

func (stringer) String() string { return "stringed" }

func TestStartServiceSpan(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartServiceSpan(context.Background(), "order_lifecycle", "change_status",
		AttrOrderID, "o-1",
		"attempt", 2,
		"ignored",
	)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "order_lifecycle.change_status", spans[0].Name())

	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String(AttrOrderID, "o-1"))
	assert.Contains(t, attrs, attribute.Int("attempt", 2))
	assert.Len(t, attrs, 2)
}

func TestRecordError(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartServiceSpan(context.Background(), "svc", "op")
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestAddEvent(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartServiceSpan(context.Background(), "svc", "op")
	AddEvent(span, "archived", AttrArchiveKind, "completed")
	span.End()

	events := recorder.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "archived", events[0].Name)
	assert.Contains(t, events[0].Attributes, attribute.String(AttrArchiveKind, "completed"))
}

func TestToAttribute(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  attribute.KeyValue
	}{
		{"string", "a", attribute.String("k", "a")},
		{"int", 3, attribute.Int("k", 3)},
		{"int64", int64(4), attribute.Int64("k", 4)},
		{"float", 1.5, attribute.Float64("k", 1.5)},
		{"bool", true, attribute.Bool("k", true)},
		{"slice", []string{"x", "y"}, attribute.StringSlice("k", []string{"x", "y"})},
		{"stringer", stringer{}, attribute.String("k", "stringed")},
		{"fallback", struct{ A int }{1}, attribute.String("k", "{1}")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toAttribute("k", tt.value))
		})
	}
}
