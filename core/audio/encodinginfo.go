package audio

import "time"

const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	DefaultFormat     = EncodingLinear16
)

// GetDefaultEncodingInfo returns the encoding the session assumes when a
// device client does not report one.
func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Channels: DefaultChannels, Format: DefaultFormat}
}

// EncodingInfo describes the raw PCM stream a capture or playback client
// produces or consumes.
type EncodingInfo struct {
	SampleRate int
	Channels   int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Channels == 0 || e.Format.Name() == ""
}

// BytesPerSecond reports the raw throughput of the stream, used to estimate
// playback durations.
func (e EncodingInfo) BytesPerSecond() int {
	return e.SampleRate * e.Channels * e.Format.ByteSize()
}

// Duration reports how long the given number of raw bytes plays for.
func (e EncodingInfo) Duration(byteCount int) time.Duration {
	bytesPerSecond := e.BytesPerSecond()
	if bytesPerSecond <= 0 {
		return 0
	}
	return time.Duration(float64(byteCount) / float64(bytesPerSecond) * float64(time.Second))
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
