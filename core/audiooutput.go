package session

import (
	"context"
	"reflect"

	"github.com/talkwave/talkwave-core/core/audio"
)

// audioOutput normalizes the configured playback client behind one facade.
//
// NOTE: an unconfigured output is not an error; playback completes
// immediately so turn state can keep progressing, mirroring how the rest of
// the session treats audio output as a non-fatal side effect.
type audioOutput struct {
	// base stores the configured playback client.
	base AudioOutput
}

func newAudioOutput(client AudioOutput) *audioOutput {
	output := audioOutput{}
	output.Set(client)
	return &output
}

// Set replaces the configured playback client. Nil and typed-nil clients are
// treated as unconfigured.
func (a *audioOutput) Set(client AudioOutput) {
	if a == nil {
		return
	}

	a.base = nil
	if isNilClient(client) {
		return
	}
	a.base = client
}

func (a *audioOutput) isConfigured() bool {
	return a != nil && a.base != nil
}

// Play forwards decoded PCM to the configured client and blocks until the
// device reports the buffer drained or failed. Without a configured client it
// returns immediately.
func (a *audioOutput) Play(ctx context.Context, pcm []byte, encodingInfo audio.EncodingInfo) error {
	if !a.isConfigured() {
		return nil
	}

	return a.base.Play(ctx, pcm, encodingInfo)
}

func (a *audioOutput) EncodingInfo() audio.EncodingInfo {
	if !a.isConfigured() {
		return audio.GetDefaultEncodingInfo()
	}

	return a.base.EncodingInfo()
}

func (a *audioOutput) Close() {
	if !a.isConfigured() {
		return
	}

	switch c := a.base.(type) {
	case interface{ Close() error }:
		_ = c.Close()
	case interface{ Close() }:
		c.Close()
	}
}

// isNilClient detects nil and typed-nil interface values so Set can avoid
// storing unusable interface wrappers as configured clients.
func isNilClient(client any) bool {
	if client == nil {
		return true
	}

	v := reflect.ValueOf(client)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
