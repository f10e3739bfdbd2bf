package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/talkwave/talkwave-core/core/events"
)

const sessionEventQueueCapacity = 32

// eventLoop serializes all session state mutations onto a single goroutine.
// Every inbound event, from whichever goroutine produced it, is applied in
// ingestion order with no reordering.
type eventLoop struct {
	queue   chan queuedEvent
	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	endOnce   sync.Once

	started atomic.Bool
}

type queuedEvent struct {
	event    events.Event
	queuedAt time.Time
}

func newEventLoop() *eventLoop {
	return &eventLoop{
		queue:   make(chan queuedEvent, sessionEventQueueCapacity),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (loop *eventLoop) CanIngest() bool {
	if loop == nil {
		return false
	}

	select {
	case <-loop.closeCh:
		return false
	default:
		return true
	}
}

// Start begins draining the queue into apply. It is effective once; repeated
// calls are no-ops.
func (loop *eventLoop) Start(baseCtx context.Context, apply func(context.Context, events.Event)) (started bool) {
	if loop == nil || apply == nil || !loop.CanIngest() {
		return false
	}

	loop.startOnce.Do(func() {
		started = true
		loop.started.Store(true)
		go func() {
			defer close(loop.done)

			for {
				select {
				case <-loop.closeCh:
					return
				case queued := <-loop.queue:
					if !loop.CanIngest() {
						return
					}
					loop.processQueuedEvent(baseCtx, queued, apply)
				}
			}
		}()
	})

	return started
}

// Ingest queues an event for serialized processing. It reports false once the
// loop is stopped.
func (loop *eventLoop) Ingest(event events.Event) bool {
	if loop == nil || !loop.CanIngest() {
		return false
	}

	queued := queuedEvent{event: event, queuedAt: time.Now()}
	select {
	case <-loop.closeCh:
		return false
	case loop.queue <- queued:
		return true
	}
}

func (loop *eventLoop) Stop() {
	if loop == nil {
		return
	}

	loop.endOnce.Do(func() { close(loop.closeCh) })
}

func (loop *eventLoop) AwaitDone() {
	if loop == nil {
		return
	}

	if loop.started.Load() {
		<-loop.done
	}
}

func (loop *eventLoop) queuedEventCount() int {
	if loop == nil {
		return 0
	}

	return len(loop.queue)
}

func (loop *eventLoop) processQueuedEvent(baseCtx context.Context, queued queuedEvent, apply func(context.Context, events.Event)) {
	ctx, span := tracer.Start(baseCtx, "process session event")
	defer span.End()

	queuedTime := time.Since(queued.queuedAt).Seconds()
	span.AddEvent("taken out of queue", trace.WithAttributes(attribute.Float64("session_event.queued_time", queuedTime)))
	span.SetAttributes(
		attribute.String("session_event.kind", string(queued.event.Kind())),
		attribute.Float64("session_event.queued_time", queuedTime),
		attribute.Int("session_event.queued_events", loop.queuedEventCount()),
	)

	apply(ctx, queued.event)
}
