package session

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/talkwave/talkwave-core/core/events"
)

func TestSpeechPlayerEmitsStartedAndEndedExactlyOnce(t *testing.T) {
	output := newScriptedAudioOutputClient()
	player := newSpeechPlayer(newAudioOutput(output))

	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	collected := collectPlayerEvents(t, player, encodeTestWAV(t, pcm))

	if len(collected) != 2 {
		t.Fatalf("expected exactly started and ended events, got %d", len(collected))
	}
	if _, ok := collected[0].(events.AssistantPlaybackStarted); !ok {
		t.Fatalf("expected first event to be playback started, got %T", collected[0])
	}
	ended, ok := collected[1].(events.AssistantPlaybackEnded)
	if !ok {
		t.Fatalf("expected second event to be playback ended, got %T", collected[1])
	}
	if ended.Err != nil {
		t.Fatalf("expected clean playback, got %v", ended.Err)
	}

	if played := output.awaitPlayed(t); !bytes.Equal(played, pcm) {
		t.Fatalf("expected played pcm %v, got %v", pcm, played)
	}
	if player.IsPlaying() {
		t.Fatalf("expected playback slot to be released")
	}
}

func TestSpeechPlayerRejectsNonWAVPayload(t *testing.T) {
	output := newScriptedAudioOutputClient()
	player := newSpeechPlayer(newAudioOutput(output))

	collected := collectPlayerEvents(t, player, []byte("not a wav container"))

	ended, ok := collected[len(collected)-1].(events.AssistantPlaybackEnded)
	if !ok {
		t.Fatalf("expected a playback ended event, got %T", collected[len(collected)-1])
	}
	if !errors.Is(ended.Err, ErrDecodeFailed) {
		t.Fatalf("expected ErrDecodeFailed, got %v", ended.Err)
	}
	if got := output.playCalls.Load(); got != 0 {
		t.Fatalf("expected no playback attempt, got %d", got)
	}
}

func TestSpeechPlayerWrapsOutputFailure(t *testing.T) {
	output := newScriptedAudioOutputClient()
	output.playErr = errors.New("device lost")
	player := newSpeechPlayer(newAudioOutput(output))

	collected := collectPlayerEvents(t, player, encodeTestWAV(t, []byte{0x01, 0x02}))

	ended, ok := collected[len(collected)-1].(events.AssistantPlaybackEnded)
	if !ok {
		t.Fatalf("expected a playback ended event, got %T", collected[len(collected)-1])
	}
	if !errors.Is(ended.Err, ErrPlaybackFailed) {
		t.Fatalf("expected ErrPlaybackFailed, got %v", ended.Err)
	}
	if player.IsPlaying() {
		t.Fatalf("expected playback slot to be released after a failure")
	}
}

func TestSpeechPlayerSingleSlot(t *testing.T) {
	player := newSpeechPlayer(newAudioOutput(nil))

	if !player.begin() {
		t.Fatalf("expected the free slot to be reservable")
	}
	if player.begin() {
		t.Fatalf("expected a second reservation to be rejected")
	}

	done := make(chan struct{})
	go func() {
		player.run(context.Background(), encodeTestWAV(t, nil), func(events.Event) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for playback to finish")
	}

	if !player.begin() {
		t.Fatalf("expected the slot to be reservable again after run")
	}
}

func TestUnconfiguredOutputPlaysInstantly(t *testing.T) {
	player := newSpeechPlayer(newAudioOutput(nil))

	collected := collectPlayerEvents(t, player, encodeTestWAV(t, []byte{0x01, 0x02}))

	ended, ok := collected[len(collected)-1].(events.AssistantPlaybackEnded)
	if !ok {
		t.Fatalf("expected a playback ended event, got %T", collected[len(collected)-1])
	}
	if ended.Err != nil {
		t.Fatalf("expected clean no-op playback, got %v", ended.Err)
	}
}

func collectPlayerEvents(t *testing.T, player *speechPlayer, payload []byte) []events.Event {
	t.Helper()

	if !player.begin() {
		t.Fatalf("expected playback slot to be free")
	}

	var collected []events.Event
	done := make(chan struct{})
	go func() {
		player.run(context.Background(), payload, func(event events.Event) {
			collected = append(collected, event)
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for playback to finish")
	}

	return collected
}
