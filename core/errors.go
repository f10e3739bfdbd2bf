package session

import "errors"

var (
	// ErrAlreadyCapturing is returned when capture is requested while another
	// capture session is still active. The active session is unaffected.
	ErrAlreadyCapturing = errors.New("a capture session is already active")

	// ErrNoAudioInput is returned when capture is requested without a
	// configured audio input client.
	ErrNoAudioInput = errors.New("no audio input configured")

	// ErrDecodeFailed marks a speech payload that could not be decoded.
	ErrDecodeFailed = errors.New("failed to decode speech payload")

	// ErrPlaybackFailed marks a playback attempt that failed on the device.
	ErrPlaybackFailed = errors.New("failed to play speech payload")

	// ErrPlaybackBusy marks a speech payload dropped because a previous
	// playback attempt is still in flight.
	ErrPlaybackBusy = errors.New("a playback attempt is already in flight")
)
