// Package events defines the typed session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - capture.*
//   - user_input.*
//   - assistant_response.*
//   - assistant_speech.*
//   - assistant_playback.*
//   - session.*
//
// Semantics used across the package:
//
//   - Payload: opaque encoded audio bytes plus a content hint.
//   - Final: terminal immutable text for the current turn phase.
//   - Ended: lifecycle boundary indicating an attempt completed, whether it
//     succeeded or failed.
//
// capture events
//
//   - CaptureStarted (capture.started): a microphone session began.
//   - CaptureStopped (capture.stopped): a microphone session ended and the
//     device was released.
//   - UtteranceSent (capture.utterance_sent): the finalized payload was handed
//     to the dialogue channel.
//
// user_input events
//
//   - UserTranscriptFinal (user_input.transcript_final): the recognized text
//     of the most recent user utterance, as delivered by the service.
//
// assistant_response events
//
//   - AssistantReplyText (assistant_response.text): the assistant's textual
//     reply for the current turn.
//
// assistant_speech events
//
//   - AssistantSpeechPayload (assistant_speech.payload): synthesized speech
//     for the reply, still encoded as received.
//
// assistant_playback events
//
//   - AssistantPlaybackStarted (assistant_playback.started): playback of a
//     speech payload began.
//   - AssistantPlaybackEnded (assistant_playback.ended): playback finished;
//     Err is non-nil when the attempt failed.
//
// session events
//
//   - Failure (session.failure): a free-form recoverable failure message from
//     capture, playback, transport, or the service itself.
package events
