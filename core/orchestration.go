package session

import (
	"context"
	"fmt"
	"sync"

	"log"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/talkwave/talkwave-core/core/events"
)

// Orchestrator drives one spoken-dialogue session: it owns capture, the
// dialogue channel, playback, and the conversation record, and serializes
// every state change through a single event loop.
type Orchestrator struct {
	status       sessionStatus
	conversation conversationLog

	loop    *eventLoop
	capture *captureController
	player  *speechPlayer

	closeOnce sync.Once

	// channel is the gateway facade used to handle optional client wiring.
	channel *dialogueChannel
	// audioInput is the input facade used to normalize capture behavior.
	audioInput  *audioInput
	audioOutput *audioOutput

	emitEvent   eventEmitter
	runOptions  RunOptions
	baseContext context.Context
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		loop:        newEventLoop(),
		channel:     newDialogueChannel(nil),
		audioInput:  newAudioInput(nil),
		audioOutput: newAudioOutput(nil),
		emitEvent:   noopEventEmitter,
		baseContext: context.Background(),
	}

	o.capture = newCaptureController(o.audioInput)
	o.player = newSpeechPlayer(o.audioOutput)
	o.channel.setIngest(o.ingest)

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run starts the session: it opens the dialogue channel, starts the event
// loop, and returns. The session stays live until ctx is cancelled or Close
// is called.
//
// Contract: call Run at most once per orchestrator instance. Repeated or
// concurrent calls are unsupported and may race while callbacks are being
// reconfigured.
func (o *Orchestrator) Run(ctx context.Context, opts ...RunOption) error {
	if !o.loop.CanIngest() {
		log.Println("Warning: orchestrator already closed, skipping Run")
		return fmt.Errorf("orchestrator already closed")
	}

	o.runOptions = RunOptions{}
	for _, opt := range opts {
		opt(&o.runOptions)
	}
	o.emitEvent = newCallbackEventEmitter(o.runOptions)

	o.baseContext = ctx

	if started := o.loop.Start(ctx, panicSafeApply("session event", o.apply)); started {
		withContextCancelHook(ctx, o.Close)
	}

	if err := o.channel.Open(ctx); err != nil {
		recordedErr := fmt.Errorf("failed to open dialogue channel: %w", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	return nil
}

// StartCapture acquires the microphone and begins a capture session. It fails
// with ErrAlreadyCapturing while a session is active and with ErrNoAudioInput
// when no input client is configured; neither failure disturbs session state
// beyond recording the error.
func (o *Orchestrator) StartCapture() error {
	ctx, span := tracer.Start(o.baseContext, "start capture")
	defer span.End()

	if _, err := o.capture.Start(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.ingest(events.NewFailure(fmt.Sprintf("failed to start capture: %v", err)))
		return err
	}

	o.ingest(events.NewCaptureStarted())
	return nil
}

// StopCapture releases the microphone and finalizes the captured utterance in
// the background. Stopping while not capturing is a no-op. The device is
// released before finalization begins, so a new capture may start while the
// previous utterance is still being encoded and sent.
func (o *Orchestrator) StopCapture() {
	ctx, span := tracer.Start(o.baseContext, "stop capture")
	defer span.End()

	sess, err := o.capture.Stop()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.ingest(events.NewFailure(fmt.Sprintf("failed to release audio input: %v", err)))
	}

	if sess == nil {
		return
	}

	o.ingest(events.NewCaptureStopped())
	go o.finalizeAndSend(ctx, sess)
}

// IsCapturing reports whether a capture session is currently active.
func (o *Orchestrator) IsCapturing() bool { return o.capture.IsCapturing() }

// IsSpeaking reports whether an assistant speech payload is currently playing.
func (o *Orchestrator) IsSpeaking() bool { return o.player.IsPlaying() }

// Status returns a point-in-time snapshot of session state.
func (o *Orchestrator) Status() Status { return o.status.Snapshot() }

// Conversation returns a point-in-time snapshot of the conversation record.
func (o *Orchestrator) Conversation() Conversation {
	return Conversation{Turns: o.conversation.snapshot(), Status: o.status.Snapshot()}
}

// Close ends the session: it stops any active capture, drains the event loop,
// and closes the channel and device clients. Repeated calls are no-ops.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		if sess, err := o.capture.Stop(); err != nil {
			recordedErr := fmt.Errorf("failed to release audio input: %w", err)
			span := trace.SpanFromContext(o.baseContext)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
		} else if sess != nil {
			o.ingest(events.NewCaptureStopped())
		}

		o.loop.Stop()

		if err := o.channel.Close(o.baseContext); err != nil {
			recordedErr := fmt.Errorf("failed to close dialogue channel: %w", err)
			span := trace.SpanFromContext(o.baseContext)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
		}

		if err := o.audioInput.Close(); err != nil {
			recordedErr := fmt.Errorf("failed to close audio input: %w", err)
			span := trace.SpanFromContext(o.baseContext)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
		}

		o.audioOutput.Close()

		o.loop.AwaitDone()
	})
}

// ingest feeds one event into the session loop. Events arriving after the
// loop has stopped are dropped.
func (o *Orchestrator) ingest(event events.Event) {
	if !o.loop.Ingest(event) {
		log.Printf("Warning: session loop stopped, dropping %s event", event.Kind())
	}
}

// finalizeAndSend flattens one detached capture session into a single payload
// and hands it to the dialogue channel. It runs off the event loop so a slow
// encode or send never delays capture or playback state changes.
func (o *Orchestrator) finalizeAndSend(ctx context.Context, sess *captureSession) {
	_, span := tracer.Start(ctx, "finalize and send utterance")
	defer span.End()

	payload, err := sess.buffer.Finalize()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.ingest(events.NewFailure(fmt.Sprintf("failed to finalize utterance: %v", err)))
		return
	}

	o.channel.SendAudio(payload)
}

// apply is the single mutation point for session state. The event loop calls
// it serially, so no state transition here needs further synchronization.
func (o *Orchestrator) apply(ctx context.Context, event events.Event) {
	before := o.status.Snapshot()

	var appendedTurn *Turn

	switch event := event.(type) {
	case events.CaptureStarted:
		o.status.setCapturing(true)
		o.status.clearLastError()

	case events.CaptureStopped:
		o.status.setCapturing(false)

	case events.UtteranceSent:
		o.status.setAwaitingReply(true)

	case events.UserTranscriptFinal:
		turn := o.conversation.append(RoleUser, event.Transcript)
		appendedTurn = &turn

	case events.AssistantReplyText:
		turn := o.conversation.append(RoleAssistant, event.Text)
		appendedTurn = &turn
		o.status.setAwaitingReply(false)

	case events.AssistantSpeechPayload:
		o.startPlayback(ctx, event.Audio)

	case events.AssistantPlaybackStarted:
		o.status.setSpeaking(true)

	case events.AssistantPlaybackEnded:
		o.status.setSpeaking(false)
		if event.Err != nil {
			o.status.setLastError(event.Err.Error())
		}

	case events.Failure:
		o.status.setLastError(event.Message)
	}

	o.emitEvent(event)

	if appendedTurn != nil && o.runOptions.onTurnAppended != nil {
		o.runOptions.onTurnAppended(*appendedTurn)
	}

	if after := o.status.Snapshot(); after != before && o.runOptions.onStatusChanged != nil {
		o.runOptions.onStatusChanged(after)
	}
}

// startPlayback launches playback of one speech payload off the event loop.
// A payload arriving while another is playing is dropped, with the drop
// surfaced as a failure.
func (o *Orchestrator) startPlayback(ctx context.Context, payload []byte) {
	if !o.player.begin() {
		message := fmt.Sprintf("assistant speech dropped: %v", ErrPlaybackBusy)
		o.status.setLastError(message)
		o.emitEvent(events.NewFailure(message))
		return
	}

	go o.player.run(ctx, payload, o.ingest)
}
