package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceHookStampsRequestAndSpanIds(t *testing.T) {
	buffer := bytes.Buffer{}
	logger := zerolog.New(&buffer).Hook(TraceHook())

	traceId := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanId := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceId,
		SpanID:     spanId,
		TraceFlags: trace.FlagsSampled,
	})

	c := AttachRequestIDToContext(context.Background(), "req-1")
	c = trace.ContextWithSpanContext(c, spanCtx)
	logger.Info().Ctx(c).Msg("stamped")

	event := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &event))
	assert.Equal(t, "req-1", event[KEY_REQUEST_ID])
	assert.Equal(t, traceId.String(), event[KEY_TRACE_ID])
	assert.Equal(t, spanId.String(), event[KEY_SPAN_ID])
}

func TestTraceHookSkipsInvalidSpanContext(t *testing.T) {
	buffer := bytes.Buffer{}
	logger := zerolog.New(&buffer).Hook(TraceHook())

	logger.Info().Ctx(context.Background()).Msg("bare")

	event := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &event))
	assert.NotContains(t, event, KEY_REQUEST_ID)
	assert.NotContains(t, event, KEY_TRACE_ID)
	assert.NotContains(t, event, KEY_SPAN_ID)
}
