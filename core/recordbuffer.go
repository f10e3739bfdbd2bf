package session

import (
	"fmt"
	"sync"

	"github.com/talkwave/talkwave-core/core/audio"
)

// recordBuffer accumulates raw capture chunks for one session and flattens
// them into a single payload at stop. Appends arrive from the device
// callback; Finalize runs on the stop path, so both are guarded.
type recordBuffer struct {
	mu sync.Mutex

	encodingInfo audio.EncodingInfo

	chunks    [][]byte
	finalized bool
}

func newRecordBuffer(encodingInfo audio.EncodingInfo) *recordBuffer {
	if encodingInfo.IsZero() {
		encodingInfo = audio.GetDefaultEncodingInfo()
	}
	return &recordBuffer{encodingInfo: encodingInfo}
}

// Append stores a copy of the chunk. Chunks arriving after finalization are
// dropped; the device slice is reused by the driver, so the copy is required.
func (b *recordBuffer) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return
	}
	b.chunks = append(b.chunks, append([]byte(nil), chunk...))
}

// ChunkCount reports how many chunks have been accumulated so far.
func (b *recordBuffer) ChunkCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// Finalize flattens the accumulated chunks into one WAV payload. A session
// with no captured data still finalizes cleanly into a header-only payload.
// The buffer accepts no further appends afterwards.
func (b *recordBuffer) Finalize() (AudioPayload, error) {
	b.mu.Lock()
	if b.finalized {
		b.mu.Unlock()
		return AudioPayload{}, fmt.Errorf("record buffer already finalized")
	}
	b.finalized = true
	chunks := b.chunks
	b.chunks = nil
	b.mu.Unlock()

	totalLength := 0
	for _, chunk := range chunks {
		totalLength += len(chunk)
	}
	pcm := make([]byte, 0, totalLength)
	for _, chunk := range chunks {
		pcm = append(pcm, chunk...)
	}

	encoded, err := audio.EncodeWAV(pcm, b.encodingInfo)
	if err != nil {
		return AudioPayload{}, fmt.Errorf("failed to finalize capture session: %w", err)
	}

	return AudioPayload{Data: encoded, MIMEType: "audio/wav"}, nil
}
