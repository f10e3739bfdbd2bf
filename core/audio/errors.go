package audio

import "errors"

var (
	// ErrPermissionDenied is wrapped by device clients when microphone access
	// is refused by the platform or the user.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrDeviceUnavailable is wrapped by device clients when no usable
	// capture or playback device can be acquired.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
)
