package session

import (
	"context"
	"sync"
)

// captureController owns the microphone acquisition lifecycle. Exactly one
// capture session may be active at a time; each started session releases the
// device exactly once, and produces exactly one payload at finalization.
type captureController struct {
	input *audioInput

	mu      sync.Mutex
	current *captureSession
}

// captureSession is the handle for one start-to-stop recording cycle.
type captureSession struct {
	buffer *recordBuffer
}

func newCaptureController(input *audioInput) *captureController {
	return &captureController{input: input}
}

// Start acquires the microphone and begins accumulating chunks. A start while
// another session is active fails with ErrAlreadyCapturing and leaves the
// active session untouched; the input facade independently defends the same
// invariant at the device level.
func (c *captureController) Start(ctx context.Context) (*captureSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return nil, ErrAlreadyCapturing
	}

	if !c.input.IsConfigured() {
		return nil, ErrNoAudioInput
	}

	sess := &captureSession{buffer: newRecordBuffer(c.input.EncodingInfo())}
	if err := c.input.StartCapture(ctx, sess.buffer.Append); err != nil {
		return nil, err
	}

	c.current = sess
	return sess, nil
}

// Stop halts the device and detaches the active session, returning it for
// finalization. Stopping with no active session is a no-op and returns nil.
// The device is released even when no data arrived.
func (c *captureController) Stop() (*captureSession, error) {
	c.mu.Lock()
	sess := c.current
	c.current = nil
	c.mu.Unlock()

	if sess == nil {
		return nil, nil
	}

	return sess, c.input.StopCapture()
}

// IsCapturing reports whether a capture session is currently active.
func (c *captureController) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}
