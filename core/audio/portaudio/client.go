package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/talkwave/talkwave-core/core/audio"
)

// Client is a PortAudio-backed device client. Capture runs a pull loop on a
// dedicated goroutine; playback writes synchronously, which makes Play
// naturally block until the payload has been handed to the device.
type Client struct {
	bufferSize int
	stream     *portaudio.Stream

	in  []int16
	out []int16

	mu          sync.Mutex
	stopCapture context.CancelFunc
	captureDone chan struct{}
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize portaudio: %v", audio.ErrDeviceUnavailable, err)
	}

	in := make([]int16, bufferSize)
	out := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(audio.DefaultChannels, audio.DefaultChannels, audio.DefaultSampleRate, bufferSize, in, out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: failed to open portaudio stream: %v", audio.ErrDeviceUnavailable, err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
		out:        out,
	}, nil
}

// StartCapture starts pulling microphone frames into onAudio until
// StopCapture is called or ctx is cancelled.
func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopCapture != nil {
		return fmt.Errorf("capture already running")
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("%w: failed to start portaudio stream: %v", audio.ErrDeviceUnavailable, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.stopCapture = cancel
	c.captureDone = done

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.stream.Read(); err != nil {
					continue
				}

				audioBuffer := bytes.Buffer{}
				binary.Write(&audioBuffer, binary.LittleEndian, c.in)
				onAudio(audioBuffer.Bytes())
			}
		}
	}()

	return nil
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	stop := c.stopCapture
	done := c.captureDone
	c.stopCapture = nil
	c.captureDone = nil
	c.mu.Unlock()

	if stop == nil {
		return nil
	}

	stop()
	<-done

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}

	return nil
}

// Play writes pcm to the output stream one buffer at a time, blocking until
// the whole payload has been written or ctx is cancelled. A trailing partial
// buffer is zero-padded.
func (c *Client) Play(ctx context.Context, pcm []byte, _ audio.EncodingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.stream.Start(); err != nil && err != portaudio.StreamIsNotStopped {
		return fmt.Errorf("%w: failed to start portaudio stream: %v", audio.ErrDeviceUnavailable, err)
	}

	bufferSize := c.bufferSize * 2
	for offset := 0; offset < len(pcm); offset += bufferSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk := make([]byte, bufferSize)
		copy(chunk, pcm[offset:min(offset+bufferSize, len(pcm))])

		binary.Read(bytes.NewBuffer(chunk), binary.LittleEndian, c.out)
		if err := c.stream.Write(); err != nil {
			return fmt.Errorf("failed to write to portaudio stream: %w", err)
		}
	}

	return nil
}

func (c *Client) Close() {
	_ = c.StopCapture()
	c.stream.Close()
	portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Channels:   audio.DefaultChannels,
		Format:     audio.EncodingLinear16,
	}
}
