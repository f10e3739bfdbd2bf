package events

const (
	// KindAssistantReplyText identifies the assistant's textual reply for a turn.
	KindAssistantReplyText Kind = "assistant_response.text"
)

// AssistantReplyText carries the assistant's full textual reply.
type AssistantReplyText struct {
	Base
	Text string
}

// NewAssistantReplyText creates an assistant reply text event.
func NewAssistantReplyText(text string) AssistantReplyText {
	return AssistantReplyText{Base: NewBase(KindAssistantReplyText), Text: text}
}
