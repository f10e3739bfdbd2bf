package dialogue

// ChannelOptions carries the per-connection callbacks a channel client
// dispatches inbound service events to. Each callback is invoked in arrival
// order, one event at a time, as soon as the event is read off the wire.
type ChannelOptions struct {
	// TranscriptionCallback is called with the recognized text of the most
	// recent user utterance.
	TranscriptionCallback func(transcript string)
	// ReplyCallback is called with the assistant's textual reply for the
	// current turn.
	ReplyCallback func(reply string)
	// SpeechCallback is called with the synthesized speech payload for the
	// reply, already base64-decoded.
	SpeechCallback func(audio []byte)
	// FailureCallback is called with service-side failure messages and with
	// transport failures raised by the client itself.
	FailureCallback func(message string)
}

type ChannelOption func(*ChannelOptions)

func WithTranscriptionCallback(callback func(transcript string)) ChannelOption {
	return func(o *ChannelOptions) {
		o.TranscriptionCallback = callback
	}
}

func WithReplyCallback(callback func(reply string)) ChannelOption {
	return func(o *ChannelOptions) {
		o.ReplyCallback = callback
	}
}

func WithSpeechCallback(callback func(audio []byte)) ChannelOption {
	return func(o *ChannelOptions) {
		o.SpeechCallback = callback
	}
}

func WithFailureCallback(callback func(message string)) ChannelOption {
	return func(o *ChannelOptions) {
		o.FailureCallback = callback
	}
}
