package events

const (
	// KindAssistantSpeechPayload identifies synthesized speech for a reply.
	KindAssistantSpeechPayload Kind = "assistant_speech.payload"
)

// AssistantSpeechPayload carries synthesized speech for the reply, still in
// the encoding the service delivered it in.
type AssistantSpeechPayload struct {
	Base
	Audio []byte
}

// NewAssistantSpeechPayload creates an assistant speech payload event.
func NewAssistantSpeechPayload(audio []byte) AssistantSpeechPayload {
	return AssistantSpeechPayload{Base: NewBase(KindAssistantSpeechPayload), Audio: audio}
}
