package log

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type requestId struct{}

func RequestIDFromContext(c context.Context) string {
	id, ok := c.Value(requestId{}).(string)
	if !ok {
		return ""
	}
	return id
}

func AttachRequestIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, requestId{}, id)
}

// TraceHook stamps every event carrying a context with the request id and,
// when a span is recording, the otel trace and span ids.
func TraceHook() zerolog.HookFunc {
	return func(e *zerolog.Event, level zerolog.Level, message string) {
		c := e.GetCtx()
		if id := RequestIDFromContext(c); id != "" {
			e.Str(KEY_REQUEST_ID, id)
		}
		spanCtx := trace.SpanContextFromContext(c)
		if spanCtx.IsValid() {
			e.Str(KEY_TRACE_ID, spanCtx.TraceID().String()).
				Str(KEY_SPAN_ID, spanCtx.SpanID().String())
		}
	}
}
