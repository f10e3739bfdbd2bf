package audio

import (
	"bytes"
	"fmt"
	"io"

	wav "github.com/youpy/go-wav"
)

// EncodeWAV wraps raw linear16 PCM into a WAV container so the payload is
// self-describing once it leaves the process.
func EncodeWAV(pcm []byte, encodingInfo EncodingInfo) ([]byte, error) {
	if encodingInfo.IsZero() {
		encodingInfo = GetDefaultEncodingInfo()
	}
	if encodingInfo.Format != EncodingLinear16 {
		return nil, fmt.Errorf("unsupported wav source format: %s", encodingInfo.Format.Name())
	}

	bytesPerSample := encodingInfo.Channels * encodingInfo.Format.ByteSize()
	numSamples := uint32(len(pcm) / bytesPerSample)

	buffer := bytes.Buffer{}
	writer := wav.NewWriter(
		&buffer,
		numSamples,
		uint16(encodingInfo.Channels),
		uint32(encodingInfo.SampleRate),
		uint16(encodingInfo.Format.ByteSize()*8),
	)
	if _, err := writer.Write(pcm); err != nil {
		return nil, fmt.Errorf("failed to write wav samples: %w", err)
	}

	return buffer.Bytes(), nil
}

// DecodeWAV parses a WAV container back into raw PCM plus its encoding.
func DecodeWAV(data []byte) ([]byte, EncodingInfo, error) {
	reader := wav.NewReader(bytes.NewReader(data))

	format, err := reader.Format()
	if err != nil {
		return nil, EncodingInfo{}, fmt.Errorf("failed to parse wav header: %w", err)
	}

	encodingInfo := EncodingInfo{
		SampleRate: int(format.SampleRate),
		Channels:   int(format.NumChannels),
	}
	switch format.BitsPerSample {
	case 16:
		encodingInfo.Format = EncodingLinear16
	case 8:
		encodingInfo.Format = EncodingMulaw
	default:
		return nil, EncodingInfo{}, fmt.Errorf("unsupported wav bit depth: %d", format.BitsPerSample)
	}

	pcm, err := io.ReadAll(reader)
	if err != nil {
		return nil, EncodingInfo{}, fmt.Errorf("failed to read wav samples: %w", err)
	}

	return pcm, encodingInfo, nil
}

// IsWAV reports whether the payload starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}
