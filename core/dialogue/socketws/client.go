package socketws

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talkwave/talkwave-core/core/dialogue"
)

// Wire event names, matching the dialogue service contract.
const (
	eventAudio         = "audio"
	eventTranscription = "transcription"
	eventAIResponse    = "ai_response"
	eventAudioResponse = "audio_response"
	eventError         = "error"
)

// envelope is the JSON frame exchanged with the dialogue service. Audio
// payloads travel base64-encoded inside Data.
type envelope struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Client is a dialogue channel over a single long-lived websocket connection.
// It performs no buffering or reordering; every inbound envelope is dispatched
// to the configured callbacks as soon as it is read.
type Client struct {
	endpoint string

	conn   *websocket.Conn
	connMu sync.Mutex

	closeOnce sync.Once
}

// NewClient creates a client for the given websocket endpoint. The connection
// is not established until Open is called.
func NewClient(endpoint string) *Client {
	return &Client{endpoint: endpoint}
}

// Open dials the service and starts the read pump. It is expected to be
// called once per session; the connection is reused for every turn.
func (c *Client) Open(ctx context.Context, opts ...dialogue.ChannelOption) error {
	options := &dialogue.ChannelOptions{}
	for _, opt := range opts {
		opt(options)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to open socket connection to dialogue service: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	go c.readAndDispatchEvents(ctx, conn, *options)

	return nil
}

// SendAudio transmits a finalized utterance payload as a base64 data URL, the
// shape the service decodes on the other end.
func (c *Client) SendAudio(data []byte, mimeType string) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("channel is not open")
	}

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	frame := envelope{
		Event: eventAudio,
		Data:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
	if err := c.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("failed to write audio to dialogue service: %w", err)
	}
	return nil
}

// Close tears the connection down. Safe to call more than once and before
// Open.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.connMu.Lock()
		conn := c.conn
		c.conn = nil
		c.connMu.Unlock()

		if conn == nil {
			return
		}

		deadline := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, deadline, closeDeadline())
		err = conn.Close()
	})
	return err
}

func (c *Client) readAndDispatchEvents(ctx context.Context, conn *websocket.Conn, options dialogue.ChannelOptions) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			c.connMu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			c.connMu.Unlock()
			conn.Close()

			if ctx.Err() == nil && !isNormalClosure(err) && options.FailureCallback != nil {
				options.FailureCallback(fmt.Sprintf("connection to dialogue service lost: %v", err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		c.dispatch(msg, options)
	}
}

func (c *Client) dispatch(msg []byte, options dialogue.ChannelOptions) {
	var frame envelope
	if err := json.Unmarshal(msg, &frame); err != nil {
		logger.Warn("Failed to unmarshal dialogue service message", "error", err)
		return
	}

	switch frame.Event {
	case eventTranscription:
		if options.TranscriptionCallback != nil {
			options.TranscriptionCallback(frame.Data)
		}
	case eventAIResponse:
		if options.ReplyCallback != nil {
			options.ReplyCallback(frame.Data)
		}
	case eventAudioResponse:
		audio, err := base64.StdEncoding.DecodeString(stripDataURL(frame.Data))
		if err != nil {
			if options.FailureCallback != nil {
				options.FailureCallback(fmt.Sprintf("failed to decode audio response: %v", err))
			}
			return
		}
		if options.SpeechCallback != nil {
			options.SpeechCallback(audio)
		}
	case eventError:
		if options.FailureCallback != nil {
			options.FailureCallback(frame.Data)
		}
	default:
		logger.Warn("Ignoring unknown dialogue service event", "event", frame.Event)
	}
}

// stripDataURL drops a "data:...;base64," prefix when the service includes
// one. Payloads without a prefix pass through unchanged.
func stripDataURL(data string) string {
	if idx := strings.Index(data, ","); idx >= 0 && strings.HasPrefix(data, "data:") {
		return data[idx+1:]
	}
	return data
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}

func isNormalClosure(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
