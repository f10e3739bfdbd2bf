package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/talkwave/talkwave-core/core/audio"
)

type playbackClient struct {
	device       *malgo.Device
	config       malgo.DeviceConfig
	encodingInfo audio.EncodingInfo

	pendingAudio []byte
	drainPoints  []drainPoint

	mu      sync.Mutex
	audioMu sync.Mutex
}

// drainPoint marks a byte offset in the pending buffer; its callback fires
// once the device has consumed everything before it.
type drainPoint struct {
	position int
	callback func()
}

// Play queues pcm on the playback device and blocks until the device drains
// past the end of it or ctx is cancelled. The device is initialized lazily
// for the payload's encoding, and reinitialized when the encoding changes
// between payloads.
func (c *playbackClient) Play(ctx context.Context, pcm []byte, encodingInfo audio.EncodingInfo, audioContext *malgo.AllocatedContext) error {
	if encodingInfo.IsZero() {
		encodingInfo = audio.GetDefaultEncodingInfo()
	}

	if err := c.ensureDevice(audioContext, encodingInfo); err != nil {
		return err
	}

	drained := make(chan struct{})

	c.audioMu.Lock()
	c.pendingAudio = append(c.pendingAudio, pcm...)
	c.drainPoints = append(c.drainPoints, drainPoint{
		position: len(c.pendingAudio),
		callback: func() { close(drained) },
	})
	c.audioMu.Unlock()

	select {
	case <-ctx.Done():
		c.clearBuffer()
		return ctx.Err()
	case <-drained:
		return nil
	}
}

func (c *playbackClient) ensureDevice(audioContext *malgo.AllocatedContext, encodingInfo audio.EncodingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil && c.encodingInfo == encodingInfo {
		return nil
	}

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	format := malgo.FormatS16
	if encodingInfo.Format.ByteSize() == 1 {
		format = malgo.FormatU8
	}
	bytesPerFrame := malgo.SampleSizeInBytes(format) * encodingInfo.Channels

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = uint32(encodingInfo.SampleRate)
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(encodingInfo.Channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = uint32(encodingInfo.SampleRate) / 10 // ~100ms of audio
	c.config.Periods = 4

	device, err := malgo.InitDevice(
		audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio(bytesPerFrame)},
	)
	if err != nil {
		return fmt.Errorf("%w: failed to initialize playback device: %v", audio.ErrDeviceUnavailable, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("%w: failed to start playback device: %v", audio.ErrDeviceUnavailable, err)
	}

	c.device = device
	c.encodingInfo = encodingInfo
	return nil
}

func (c *playbackClient) clearBuffer() {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.pendingAudio = nil
	drainPoints := c.drainPoints
	c.drainPoints = nil

	go func() {
		for _, point := range drainPoints {
			point.callback()
		}
	}()
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	c.clearBuffer()
	return nil
}

func (c *playbackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		c.audioMu.Lock()
		consumed := min(need, len(c.pendingAudio))
		_ = copy(pOutput, c.pendingAudio[:consumed])
		c.pendingAudio = c.pendingAudio[consumed:]
		passed := c.passedDrainPoints(consumed)
		c.audioMu.Unlock()

		if len(passed) > 0 {
			go func() {
				for _, point := range passed {
					point.callback()
				}
			}()
		}
	}
}

// passedDrainPoints shifts remaining drain points by the number of consumed
// bytes and returns the ones the device has now drained past. Callers must
// hold audioMu.
func (c *playbackClient) passedDrainPoints(consumed int) []drainPoint {
	passed := 0
	for i, point := range c.drainPoints {
		if point.position > consumed {
			c.drainPoints[i].position -= consumed
		} else {
			passed++
		}
	}

	toCall := c.drainPoints[:passed]
	c.drainPoints = c.drainPoints[passed:]
	return toCall
}
