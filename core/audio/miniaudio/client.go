package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/talkwave/talkwave-core/core/audio"
)

// Client is a miniaudio-backed device client providing both microphone
// capture and speaker playback.
type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	captureClient
	playbackClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: malgo context init failed: %v", audio.ErrDeviceUnavailable, err)
	}

	client := Client{
		audioContext: audioCtx,
	}

	if err := client.captureClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.captureClient.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.captureClient.Stop()
}

// Play queues one utterance's worth of PCM and blocks until the playback
// device has drained it or ctx is cancelled.
func (c *Client) Play(ctx context.Context, pcm []byte, encodingInfo audio.EncodingInfo) error {
	return c.playbackClient.Play(ctx, pcm, encodingInfo, c.audioContext)
}

func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	_ = c.playbackClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Channels:   audio.DefaultChannels,
		Format:     audio.EncodingLinear16,
	}
}
