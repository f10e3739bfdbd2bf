package session

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/codes"

	"github.com/talkwave/talkwave-core/core/audio"
	"github.com/talkwave/talkwave-core/core/events"
)

// speechPlayer plays one assistant speech payload at a time. Overlapping
// payloads are rejected at begin; the session drops them rather than queueing
// or interrupting the attempt in flight.
type speechPlayer struct {
	output *audioOutput

	playing atomic.Bool
}

func newSpeechPlayer(output *audioOutput) *speechPlayer {
	return &speechPlayer{output: output}
}

// begin reserves the single playback slot. The caller must invoke run after a
// successful begin; run releases the slot on every path.
func (p *speechPlayer) begin() bool {
	return p != nil && p.playing.CompareAndSwap(false, true)
}

func (p *speechPlayer) IsPlaying() bool {
	return p != nil && p.playing.Load()
}

// run decodes and plays one payload, reporting lifecycle through ingest.
// Exactly one started and one ended event are emitted per attempt, and the
// playback slot is released unconditionally.
func (p *speechPlayer) run(ctx context.Context, payload []byte, ingest func(events.Event)) {
	defer p.playing.Store(false)

	ctx, span := tracer.Start(ctx, "play assistant speech")
	defer span.End()

	ingest(events.NewAssistantPlaybackStarted())

	err := p.play(ctx, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	ingest(events.NewAssistantPlaybackEnded(err))
}

func (p *speechPlayer) play(ctx context.Context, payload []byte) error {
	if !audio.IsWAV(payload) {
		return fmt.Errorf("%w: payload is not a wav container", ErrDecodeFailed)
	}

	pcm, encodingInfo, err := audio.DecodeWAV(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	if err := p.output.Play(ctx, pcm, encodingInfo); err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}

	return nil
}
