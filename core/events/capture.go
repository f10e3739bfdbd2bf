package events

const (
	// KindCaptureStarted identifies the start of a microphone session.
	KindCaptureStarted Kind = "capture.started"
	// KindCaptureStopped identifies the end of a microphone session.
	KindCaptureStopped Kind = "capture.stopped"
	// KindUtteranceSent identifies handoff of a finalized payload to the channel.
	KindUtteranceSent Kind = "capture.utterance_sent"
)

// CaptureStarted marks when a microphone session begins.
type CaptureStarted struct{ Base }

// NewCaptureStarted creates a capture started event.
func NewCaptureStarted() CaptureStarted {
	return CaptureStarted{Base: NewBase(KindCaptureStarted)}
}

// CaptureStopped marks when a microphone session ends and the device is
// released.
type CaptureStopped struct{ Base }

// NewCaptureStopped creates a capture stopped event.
func NewCaptureStopped() CaptureStopped {
	return CaptureStopped{Base: NewBase(KindCaptureStopped)}
}

// UtteranceSent marks when the finalized utterance payload has been handed to
// the dialogue channel. Bytes is the encoded payload size, kept for
// diagnostics only.
type UtteranceSent struct {
	Base
	Bytes int
}

// NewUtteranceSent creates an utterance sent event.
func NewUtteranceSent(bytes int) UtteranceSent {
	return UtteranceSent{Base: NewBase(KindUtteranceSent), Bytes: bytes}
}
