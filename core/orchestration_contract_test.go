package session

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/talkwave/talkwave-core/core/audio"
	"github.com/talkwave/talkwave-core/core/dialogue"
)

func TestCapturedUtteranceReachesChannelAsWAV(t *testing.T) {
	chunks := [][]byte{{0x01, 0x02}, {0x03, 0x04}, {0x05, 0x06}}
	channel := newScriptedDialogueChannel()
	input := &scriptedAudioInputClient{chunks: chunks}

	o := NewOrchestrator(
		WithDialogueChannel(channel),
		WithAudioInput(input),
	)
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := o.Run(ctx); err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	if err := o.StartCapture(); err != nil {
		t.Fatalf("expected capture to start, got %v", err)
	}
	o.StopCapture()

	payload := channel.awaitPayload(t)
	if payload.mimeType != "audio/wav" {
		t.Fatalf("expected audio/wav payload, got %q", payload.mimeType)
	}

	pcm, _, err := audio.DecodeWAV(payload.data)
	if err != nil {
		t.Fatalf("expected decodable wav payload, got %v", err)
	}

	want := bytes.Join(chunks, nil)
	if !bytes.Equal(pcm, want) {
		t.Fatalf("expected payload pcm %v, got %v", want, pcm)
	}
}

func TestUtteranceHandoffSetsAwaitingReplyUntilReplyArrives(t *testing.T) {
	channel := newScriptedDialogueChannel()

	statusChanges := make(chan Status, 16)

	o := NewOrchestrator(
		WithDialogueChannel(channel),
		WithAudioInput(&scriptedAudioInputClient{}),
	)
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := o.Run(ctx, WithStatusChangedCallback(func(status Status) {
		select {
		case statusChanges <- status:
		default:
		}
	}))
	if err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	if err := o.StartCapture(); err != nil {
		t.Fatalf("expected capture to start, got %v", err)
	}
	o.StopCapture()
	channel.awaitPayload(t)

	awaitStatus(t, statusChanges, func(s Status) bool { return s.AwaitingReply })

	channel.deliverTranscription("turn up the heat")
	channel.deliverReply("done, set to 22 degrees")

	awaitStatus(t, statusChanges, func(s Status) bool { return !s.AwaitingReply })

	conversation := o.Conversation()
	if len(conversation.Turns) != 2 {
		t.Fatalf("expected two turns, got %d", len(conversation.Turns))
	}
	if conversation.Turns[0].Role != RoleUser || conversation.Turns[0].Text != "turn up the heat" {
		t.Fatalf("expected first turn to be the user transcript, got %+v", conversation.Turns[0])
	}
	if conversation.Turns[1].Role != RoleAssistant || conversation.Turns[1].Text != "done, set to 22 degrees" {
		t.Fatalf("expected second turn to be the assistant reply, got %+v", conversation.Turns[1])
	}
}

func TestSpeechPayloadPlaysAndReleasesSpeaking(t *testing.T) {
	channel := newScriptedDialogueChannel()
	output := newScriptedAudioOutputClient()

	speakingChanges := make(chan bool, 4)

	o := NewOrchestrator(
		WithDialogueChannel(channel),
		WithAudioOutput(output),
	)
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := o.Run(ctx, WithSpeakingStateChangedCallback(func(isSpeaking bool) {
		speakingChanges <- isSpeaking
	}))
	if err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	pcm := []byte{0x0a, 0x0b, 0x0c, 0x0d}
	channel.deliverSpeech(t, encodeTestWAV(t, pcm))

	awaitBool(t, speakingChanges, true)

	played := output.awaitPlayed(t)
	if !bytes.Equal(played, pcm) {
		t.Fatalf("expected played pcm %v, got %v", pcm, played)
	}

	awaitBool(t, speakingChanges, false)
}

func TestOverlappingSpeechPayloadIsDropped(t *testing.T) {
	channel := newScriptedDialogueChannel()
	output := newScriptedAudioOutputClient()
	output.block = make(chan struct{})

	failures := make(chan string, 4)

	o := NewOrchestrator(
		WithDialogueChannel(channel),
		WithAudioOutput(output),
	)
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := o.Run(ctx, WithFailureCallback(func(message string) {
		select {
		case failures <- message:
		default:
		}
	}))
	if err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	first := []byte{0x01, 0x02}
	second := []byte{0x03, 0x04}
	channel.deliverSpeech(t, encodeTestWAV(t, first))
	output.awaitPlayed(t)

	channel.deliverSpeech(t, encodeTestWAV(t, second))

	select {
	case <-failures:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for overlap drop failure")
	}

	close(output.block)

	time.Sleep(50 * time.Millisecond)
	if got := output.playCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one playback, got %d", got)
	}
}

func TestUndecodableSpeechSurfacesFailureAndReleasesSpeaking(t *testing.T) {
	channel := newScriptedDialogueChannel()
	output := newScriptedAudioOutputClient()

	statusChanges := make(chan Status, 16)

	o := NewOrchestrator(
		WithDialogueChannel(channel),
		WithAudioOutput(output),
	)
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := o.Run(ctx, WithStatusChangedCallback(func(status Status) {
		select {
		case statusChanges <- status:
		default:
		}
	}))
	if err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	channel.deliverSpeech(t, []byte("definitely not audio"))

	awaitStatus(t, statusChanges, func(s Status) bool { return !s.Speaking && s.LastError != "" })

	time.Sleep(50 * time.Millisecond)
	if got := output.playCalls.Load(); got != 0 {
		t.Fatalf("expected no playback of undecodable payload, got %d", got)
	}
	if o.IsSpeaking() {
		t.Fatalf("expected speaking to be released after decode failure")
	}
	if got := len(o.Conversation().Turns); got != 0 {
		t.Fatalf("expected transcript to be untouched by the failed playback, got %d turns", got)
	}
}

func TestFailureWhileAwaitingReplyDoesNotForceTransition(t *testing.T) {
	channel := newScriptedDialogueChannel()

	statusChanges := make(chan Status, 16)

	o := NewOrchestrator(
		WithDialogueChannel(channel),
		WithAudioInput(&scriptedAudioInputClient{}),
	)
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := o.Run(ctx, WithStatusChangedCallback(func(status Status) {
		select {
		case statusChanges <- status:
		default:
		}
	}))
	if err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	if err := o.StartCapture(); err != nil {
		t.Fatalf("expected capture to start, got %v", err)
	}
	o.StopCapture()
	channel.awaitPayload(t)
	awaitStatus(t, statusChanges, func(s Status) bool { return s.AwaitingReply })

	channel.deliverFailure("service unavailable")
	awaitStatus(t, statusChanges, func(s Status) bool { return s.LastError == "service unavailable" })

	if got := o.Status(); !got.AwaitingReply {
		t.Fatalf("expected awaiting reply to survive the failure, got %+v", got)
	}

	channel.deliverReply("recovered")
	awaitStatus(t, statusChanges, func(s Status) bool { return !s.AwaitingReply })

	conversation := o.Conversation()
	if len(conversation.Turns) != 1 || conversation.Turns[0].Text != "recovered" {
		t.Fatalf("expected the late reply to still append, got %+v", conversation.Turns)
	}
}

func TestStartCaptureWhileCapturingFails(t *testing.T) {
	o := NewOrchestrator(WithAudioInput(&scriptedAudioInputClient{}))
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := o.Run(ctx); err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	if err := o.StartCapture(); err != nil {
		t.Fatalf("expected first capture to start, got %v", err)
	}

	if err := o.StartCapture(); !errors.Is(err, ErrAlreadyCapturing) {
		t.Fatalf("expected ErrAlreadyCapturing, got %v", err)
	}

	if !o.IsCapturing() {
		t.Fatalf("expected original capture session to survive the rejected start")
	}
}

func TestStartCaptureWithoutInputFails(t *testing.T) {
	o := NewOrchestrator()
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := o.Run(ctx); err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	if err := o.StartCapture(); !errors.Is(err, ErrNoAudioInput) {
		t.Fatalf("expected ErrNoAudioInput, got %v", err)
	}

	deadline := time.After(2 * time.Second)
	for o.Status().LastError == "" {
		select {
		case <-deadline:
			t.Fatalf("expected last error to record the failed start")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestServiceFailureDoesNotDisruptCapture(t *testing.T) {
	channel := newScriptedDialogueChannel()

	failures := make(chan string, 4)

	o := NewOrchestrator(
		WithDialogueChannel(channel),
		WithAudioInput(&scriptedAudioInputClient{}),
	)
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := o.Run(ctx, WithFailureCallback(func(message string) {
		select {
		case failures <- message:
		default:
		}
	}))
	if err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	if err := o.StartCapture(); err != nil {
		t.Fatalf("expected capture to start, got %v", err)
	}

	channel.deliverFailure("transcription service unavailable")

	select {
	case <-failures:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for failure callback")
	}

	if !o.IsCapturing() {
		t.Fatalf("expected capture to survive a service failure")
	}
	if got := o.Status().LastError; got != "transcription service unavailable" {
		t.Fatalf("expected last error to carry the failure message, got %q", got)
	}
}

func TestSendFailureSurfacesAsFailureNotError(t *testing.T) {
	channel := newScriptedDialogueChannel()
	channel.sendErr = errors.New("connection reset")

	failures := make(chan string, 4)

	o := NewOrchestrator(
		WithDialogueChannel(channel),
		WithAudioInput(&scriptedAudioInputClient{}),
	)
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := o.Run(ctx, WithFailureCallback(func(message string) {
		select {
		case failures <- message:
		default:
		}
	}))
	if err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	if err := o.StartCapture(); err != nil {
		t.Fatalf("expected capture to start, got %v", err)
	}
	o.StopCapture()

	select {
	case <-failures:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for send failure")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	o := NewOrchestrator(WithAudioInput(&scriptedAudioInputClient{}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := o.Run(ctx); err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}

	o.Close()
	o.Close()

	if err := o.Run(ctx); err == nil {
		t.Fatalf("expected run after close to fail")
	}
}

func awaitStatus(t *testing.T, statuses chan Status, match func(Status) bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case status := <-statuses:
			if match(status) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for status change")
		}
	}
}

func awaitBool(t *testing.T, values chan bool, want bool) {
	t.Helper()
	select {
	case got := <-values:
		if got != want {
			t.Fatalf("expected %t, got %t", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %t", want)
	}
}

func encodeTestWAV(t *testing.T, pcm []byte) []byte {
	t.Helper()
	encoded, err := audio.EncodeWAV(pcm, audio.GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("failed to encode test wav: %v", err)
	}
	return encoded
}

type sentPayload struct {
	data     []byte
	mimeType string
}

type scriptedDialogueChannel struct {
	sendErr error

	mu       sync.Mutex
	options  dialogue.ChannelOptions
	payloads chan sentPayload
}

func newScriptedDialogueChannel() *scriptedDialogueChannel {
	return &scriptedDialogueChannel{payloads: make(chan sentPayload, 8)}
}

func (c *scriptedDialogueChannel) Open(_ context.Context, opts ...dialogue.ChannelOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, opt := range opts {
		opt(&c.options)
	}
	return nil
}

func (c *scriptedDialogueChannel) SendAudio(data []byte, mimeType string) error {
	if c.sendErr != nil {
		return c.sendErr
	}

	select {
	case c.payloads <- sentPayload{data: append([]byte(nil), data...), mimeType: mimeType}:
	default:
	}
	return nil
}

func (c *scriptedDialogueChannel) awaitPayload(t *testing.T) sentPayload {
	t.Helper()
	select {
	case payload := <-c.payloads:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for payload")
		return sentPayload{}
	}
}

func (c *scriptedDialogueChannel) deliverTranscription(transcript string) {
	c.mu.Lock()
	callback := c.options.TranscriptionCallback
	c.mu.Unlock()
	if callback != nil {
		callback(transcript)
	}
}

func (c *scriptedDialogueChannel) deliverReply(reply string) {
	c.mu.Lock()
	callback := c.options.ReplyCallback
	c.mu.Unlock()
	if callback != nil {
		callback(reply)
	}
}

func (c *scriptedDialogueChannel) deliverSpeech(t *testing.T, payload []byte) {
	t.Helper()
	c.mu.Lock()
	callback := c.options.SpeechCallback
	c.mu.Unlock()
	if callback == nil {
		t.Fatalf("expected speech callback to be registered")
	}
	callback(payload)
}

func (c *scriptedDialogueChannel) deliverFailure(message string) {
	c.mu.Lock()
	callback := c.options.FailureCallback
	c.mu.Unlock()
	if callback != nil {
		callback(message)
	}
}

type scriptedAudioInputClient struct {
	chunks [][]byte

	startCalls atomic.Int32
	stopCalls  atomic.Int32
}

func (s *scriptedAudioInputClient) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (s *scriptedAudioInputClient) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	s.startCalls.Add(1)
	for _, chunk := range s.chunks {
		select {
		case <-ctx.Done():
			return nil
		default:
			onAudio(chunk)
		}
	}
	return nil
}

func (s *scriptedAudioInputClient) StopCapture() error {
	s.stopCalls.Add(1)
	return nil
}

func (s *scriptedAudioInputClient) Close() {}

type scriptedAudioOutputClient struct {
	playErr error
	block   chan struct{}

	playCalls atomic.Int32
	played    chan []byte
}

func newScriptedAudioOutputClient() *scriptedAudioOutputClient {
	return &scriptedAudioOutputClient{played: make(chan []byte, 8)}
}

func (s *scriptedAudioOutputClient) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (s *scriptedAudioOutputClient) Play(ctx context.Context, pcm []byte, _ audio.EncodingInfo) error {
	s.playCalls.Add(1)

	select {
	case s.played <- append([]byte(nil), pcm...):
	default:
	}

	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return s.playErr
}

func (s *scriptedAudioOutputClient) awaitPlayed(t *testing.T) []byte {
	t.Helper()
	select {
	case pcm := <-s.played:
		return pcm
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for playback")
		return nil
	}
}
