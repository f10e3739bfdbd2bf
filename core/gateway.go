package session

import (
	"context"
	"fmt"

	"github.com/talkwave/talkwave-core/core/dialogue"
	"github.com/talkwave/talkwave-core/core/events"
)

// dialogueChannel is the gateway facade over the configured channel client.
// Inbound service events are converted to typed session events and handed to
// ingest as soon as they arrive; the facade does no buffering or reordering.
type dialogueChannel struct {
	// client stores the configured channel implementation.
	client DialogueChannel

	ingest func(events.Event)
}

func newDialogueChannel(client DialogueChannel) *dialogueChannel {
	return &dialogueChannel{
		client: client,
		ingest: func(events.Event) {},
	}
}

func (c *dialogueChannel) set(client DialogueChannel) {
	if c != nil {
		c.client = client
	}
}

func (c *dialogueChannel) setIngest(ingest func(events.Event)) {
	if c != nil && ingest != nil {
		c.ingest = ingest
	}
}

func (c *dialogueChannel) isConfigured() bool {
	return c != nil && c.client != nil
}

// Open establishes the long-lived connection and registers the typed event
// handlers. The registration lives for the whole connection; there is no
// per-turn subscribe/unsubscribe.
func (c *dialogueChannel) Open(ctx context.Context) error {
	if !c.isConfigured() {
		return nil
	}

	channelOptions := []dialogue.ChannelOption{
		dialogue.WithTranscriptionCallback(c.invokeTranscription),
		dialogue.WithReplyCallback(c.invokeReply),
		dialogue.WithSpeechCallback(c.invokeSpeech),
		dialogue.WithFailureCallback(c.invokeFailure),
	}

	if err := c.client.Open(ctx, channelOptions...); err != nil {
		return fmt.Errorf("failed to open dialogue channel: %w", err)
	}

	return nil
}

// SendAudio hands one finalized payload to the channel. Handoff is reported
// immediately; a transmission failure surfaces later as a failure event, not
// as a return value, matching the service's own error delivery.
func (c *dialogueChannel) SendAudio(payload AudioPayload) {
	if !c.isConfigured() {
		c.ingest(events.NewFailure("no dialogue channel configured, dropping utterance"))
		return
	}

	c.ingest(events.NewUtteranceSent(len(payload.Data)))

	if err := c.client.SendAudio(payload.Data, payload.MIMEType); err != nil {
		c.ingest(events.NewFailure(fmt.Sprintf("failed to send utterance: %v", err)))
	}
}

func (c *dialogueChannel) Close(ctx context.Context) error {
	if !c.isConfigured() {
		return nil
	}

	switch client := c.client.(type) {
	case interface{ Close(context.Context) error }:
		if err := client.Close(ctx); err != nil {
			return fmt.Errorf("failed to close dialogue channel: %w", err)
		}
	case interface{ Close(context.Context) }:
		client.Close(ctx)
	case interface{ Close() error }:
		if err := client.Close(); err != nil {
			return fmt.Errorf("failed to close dialogue channel: %w", err)
		}
	case interface{ Close() }:
		client.Close()
	}

	return nil
}

func (c *dialogueChannel) invokeTranscription(transcript string) {
	c.ingest(events.NewUserTranscriptFinal(transcript))
}

func (c *dialogueChannel) invokeReply(reply string) {
	c.ingest(events.NewAssistantReplyText(reply))
}

func (c *dialogueChannel) invokeSpeech(audio []byte) {
	c.ingest(events.NewAssistantSpeechPayload(audio))
}

func (c *dialogueChannel) invokeFailure(message string) {
	c.ingest(events.NewFailure(message))
}
