package session

// AudioPayload is the finalized, encoded audio of one capture session. It is
// produced once at stop, handed to the dialogue channel exactly once, and not
// retained afterwards.
type AudioPayload struct {
	Data     []byte
	MIMEType string
}
