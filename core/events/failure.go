package events

const (
	// KindFailure identifies a recoverable failure from any session boundary.
	KindFailure Kind = "session.failure"
)

// Failure carries a user-visible failure message. The same event shape is
// used for capture, playback, transport, and service-side failures; the
// session keeps only the most recent one.
type Failure struct {
	Base
	Message string
}

// NewFailure creates a failure event.
func NewFailure(message string) Failure {
	return Failure{Base: NewBase(KindFailure), Message: message}
}
