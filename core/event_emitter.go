package session

import "github.com/talkwave/talkwave-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts RunOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.CaptureStarted:
			if opts.onCaptureStateChanged != nil {
				opts.onCaptureStateChanged(true)
			}
		case events.CaptureStopped:
			if opts.onCaptureStateChanged != nil {
				opts.onCaptureStateChanged(false)
			}
		case events.UserTranscriptFinal:
			if opts.onTranscription != nil {
				opts.onTranscription(typedEvent.Transcript)
			}
		case events.AssistantReplyText:
			if opts.onReply != nil {
				opts.onReply(typedEvent.Text)
			}
		case events.AssistantPlaybackStarted:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(true)
			}
		case events.AssistantPlaybackEnded:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(false)
			}
		case events.Failure:
			if opts.onFailure != nil {
				opts.onFailure(typedEvent.Message)
			}
		}
	}
}
