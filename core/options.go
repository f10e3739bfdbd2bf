package session

import (
	"context"

	"github.com/talkwave/talkwave-core/core/audio"
	"github.com/talkwave/talkwave-core/core/dialogue"
)

type OrchestratorOption func(*Orchestrator)

// DialogueChannel is the bidirectional event conduit to the remote dialogue
// service. One logical connection is opened at session start and reused for
// every turn.
type DialogueChannel interface {
	Open(ctx context.Context, opts ...dialogue.ChannelOption) error
	SendAudio(data []byte, mimeType string) error
}

// WithDialogueChannel injects the channel client the session talks to the
// service through. Tests substitute a scripted channel here.
func WithDialogueChannel(client DialogueChannel) OrchestratorOption {
	return func(o *Orchestrator) { o.channel.set(client) }
}

// AudioInput is a capture device client. StartCapture streams raw chunks to
// onAudio until StopCapture releases the device.
type AudioInput interface {
	EncodingInfo() audio.EncodingInfo
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

func WithAudioInput(client AudioInput) OrchestratorOption {
	return func(o *Orchestrator) { o.audioInput.Set(client) }
}

// AudioOutput is a playback device client. Play blocks until the given PCM
// has drained or the device fails.
type AudioOutput interface {
	EncodingInfo() audio.EncodingInfo
	Play(ctx context.Context, pcm []byte, encodingInfo audio.EncodingInfo) error
}

func WithAudioOutput(client AudioOutput) OrchestratorOption {
	return func(o *Orchestrator) { o.audioOutput.Set(client) }
}

type RunOptions struct {
	onTranscription        func(transcript string)
	onReply                func(reply string)
	onCaptureStateChanged  func(isCapturing bool)
	onSpeakingStateChanged func(isSpeaking bool)
	onFailure              func(message string)
	onStatusChanged        func(status Status)
	onTurnAppended         func(turn Turn)
}

type RunOption func(*RunOptions)

// WithTranscriptionCallback registers a callback for the recognized text of
// each user utterance, as delivered by the service.
func WithTranscriptionCallback(callback func(transcript string)) RunOption {
	return func(o *RunOptions) {
		o.onTranscription = callback
	}
}

// WithReplyCallback registers a callback for the assistant's textual reply of
// each turn.
func WithReplyCallback(callback func(reply string)) RunOption {
	return func(o *RunOptions) {
		o.onReply = callback
	}
}

// WithCaptureStateChangedCallback registers a callback for microphone
// lifecycle changes.
func WithCaptureStateChangedCallback(callback func(isCapturing bool)) RunOption {
	return func(o *RunOptions) {
		o.onCaptureStateChanged = callback
	}
}

// WithSpeakingStateChangedCallback registers a callback for playback
// lifecycle changes.
func WithSpeakingStateChangedCallback(callback func(isSpeaking bool)) RunOption {
	return func(o *RunOptions) {
		o.onSpeakingStateChanged = callback
	}
}

// WithFailureCallback registers a callback for recoverable failures from any
// boundary. The session keeps running after each one.
func WithFailureCallback(callback func(message string)) RunOption {
	return func(o *RunOptions) {
		o.onFailure = callback
	}
}

// WithStatusChangedCallback registers a callback invoked with a fresh status
// snapshot whenever the status vector changes.
func WithStatusChangedCallback(callback func(status Status)) RunOption {
	return func(o *RunOptions) {
		o.onStatusChanged = callback
	}
}

// WithTurnAppendedCallback registers a callback invoked once per transcript
// append, in append order.
func WithTurnAppendedCallback(callback func(turn Turn)) RunOption {
	return func(o *RunOptions) {
		o.onTurnAppended = callback
	}
}
