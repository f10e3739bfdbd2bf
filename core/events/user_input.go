package events

const (
	// KindUserTranscriptFinal identifies the recognized text of a user utterance.
	KindUserTranscriptFinal Kind = "user_input.transcript_final"
)

// UserTranscriptFinal carries the recognized text of the most recent user
// utterance as delivered by the service.
type UserTranscriptFinal struct {
	Base
	Transcript string
}

// NewUserTranscriptFinal creates a final transcript event.
func NewUserTranscriptFinal(transcript string) UserTranscriptFinal {
	return UserTranscriptFinal{Base: NewBase(KindUserTranscriptFinal), Transcript: transcript}
}
