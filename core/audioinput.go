package session

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/talkwave/talkwave-core/core/audio"
)

// audioInput normalizes the configured capture client behind one facade so
// the capture controller never deals with a nil or misbehaving client
// directly.
type audioInput struct {
	// base stores the configured input client used for capturing audio.
	base AudioInput

	// connected reports whether a concrete input client is currently configured.
	connected atomic.Bool
	// isCapturing reports whether the input client is currently capturing audio.
	isCapturing atomic.Bool
}

func newAudioInput(client AudioInput) *audioInput {
	input := audioInput{}
	input.Set(client)
	return &input
}

// Set replaces the configured input client. Nil and typed-nil clients are
// treated as unconfigured.
func (a *audioInput) Set(client AudioInput) {
	if a == nil {
		return
	}

	a.base = client
	a.connected.Store(false)
	a.isCapturing.Store(false)

	if isNilClient(client) {
		a.base = nil
		return
	}

	a.connected.Store(true)
}

func (a *audioInput) IsConfigured() bool { return a != nil && a.connected.Load() }
func (a *audioInput) IsCapturing() bool  { return a != nil && a.isCapturing.Load() }

// StartCapture acquires the device and begins streaming chunks to onAudio.
// A second start while capturing is rejected without touching the device.
func (a *audioInput) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	if !a.IsConfigured() {
		return ErrNoAudioInput
	}

	if !a.isCapturing.CompareAndSwap(false, true) {
		return ErrAlreadyCapturing
	}

	if err := a.base.StartCapture(ctx, onAudio); err != nil {
		a.isCapturing.Store(false)
		return fmt.Errorf("failed to start audio input: %w", err)
	}

	return nil
}

// StopCapture halts the device and releases it. Calling it when no capture is
// active is a no-op, so release happens at most once per started session.
func (a *audioInput) StopCapture() error {
	if !a.IsConfigured() {
		return nil
	}

	if !a.isCapturing.CompareAndSwap(true, false) {
		return nil
	}

	if err := a.base.StopCapture(); err != nil {
		return fmt.Errorf("failed to stop audio input: %w", err)
	}

	return nil
}

func (a *audioInput) EncodingInfo() audio.EncodingInfo {
	if a == nil || a.base == nil {
		return audio.GetDefaultEncodingInfo()
	}

	return a.base.EncodingInfo()
}

func (a *audioInput) Close() error {
	if a == nil || !a.IsConfigured() {
		return nil
	}

	err := a.StopCapture()

	switch c := a.base.(type) {
	case interface{ Close() error }:
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close audio input client: %w", closeErr)
		}
	case interface{ Close() }:
		c.Close()
	}

	return err
}
