package session

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/talkwave/talkwave-core/core/events"
)

type applyFunc func(context.Context, events.Event)

// panicSafeApply wraps an event handler so a panic while applying one event is
// recorded on the active span instead of tearing down the session loop.
func panicSafeApply(name string, apply applyFunc) applyFunc {
	return func(ctx context.Context, event events.Event) {
		defer func() {
			if recovered := recover(); recovered != nil {
				recordedErr := fmt.Errorf("%s handler panicked on %s: %v", name, event.Kind(), recovered)
				span := trace.SpanFromContext(ctx)
				span.RecordError(recordedErr)
				span.SetStatus(codes.Error, recordedErr.Error())
			}
		}()

		apply(ctx, event)
	}
}

func withContextCancelHook(ctx context.Context, onContextDone func()) chan struct{} {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			onContextDone()
		case <-done:
		}
	}()
	return done
}
