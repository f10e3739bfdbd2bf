package session

import "sync"

// Status is the UI-visible status vector. The flags are tracked
// independently; capturing and speaking may be true at the same time.
type Status struct {
	// Capturing is true while the microphone is actively recording.
	Capturing bool
	// AwaitingReply is true from utterance handoff until a reply arrives.
	AwaitingReply bool
	// Speaking is true while a synthesized reply is being played back.
	Speaking bool
	// LastError is the most recent failure message, empty when none. It is
	// cleared when a new capture session begins.
	LastError string
}

// sessionStatus holds the live status vector. Writes happen only on the
// session's dispatch loop; the lock exists so snapshots can be read from any
// goroutine.
type sessionStatus struct {
	mu sync.RWMutex

	status Status
}

func (s *sessionStatus) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *sessionStatus) setCapturing(capturing bool) {
	s.mu.Lock()
	s.status.Capturing = capturing
	s.mu.Unlock()
}

func (s *sessionStatus) setAwaitingReply(awaitingReply bool) {
	s.mu.Lock()
	s.status.AwaitingReply = awaitingReply
	s.mu.Unlock()
}

func (s *sessionStatus) setSpeaking(speaking bool) {
	s.mu.Lock()
	s.status.Speaking = speaking
	s.mu.Unlock()
}

func (s *sessionStatus) setLastError(message string) {
	s.mu.Lock()
	s.status.LastError = message
	s.mu.Unlock()
}

func (s *sessionStatus) clearLastError() {
	s.setLastError("")
}
