package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		l := zap.NewExample()
		assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
	})

	t.Run("returns nop when absent", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, l := WithRequestID(context.Background(), zap.New(core), "req-1")

	l.Info("hello")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
}

func TestWithActor(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, _ := WithActor(context.Background(), zap.New(core), "u-1", "FINANCE")

	FromContext(ctx).Info("payment recorded")

	assert.Equal(t, "u-1", GetUserID(ctx))
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, "FINANCE", fields["role"])
}

func TestL_AddsTraceFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx = trace.ContextWithSpanContext(ctx, sc)

	L(ctx).Info("traced")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
	assert.Equal(t, traceID.String(), GetTraceID(ctx))
}

func TestL_NoSpan(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	L(WithContext(context.Background(), zap.New(core))).Info("plain")

	_, ok := logs.All()[0].ContextMap()["trace_id"]
	assert.False(t, ok)
	assert.Empty(t, GetTraceID(context.Background()))
}
