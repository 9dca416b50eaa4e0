package pipeline

import "errors"

// Sentinel errors classifying pipeline outcomes. Run wraps these with
// internal detail for operator logs; callers classify with [errors.Is] and
// must translate to generic user-facing text — backend error strings never
// reach the chat reply.
var (
	// ErrNoText reports that OCR completed but recognised no text. This is a
	// normal outcome for blank or illegible documents, not a service failure.
	ErrNoText = errors.New("pipeline: no text recognised in document")

	// ErrOCRFailed reports that the text-recognition backend failed.
	ErrOCRFailed = errors.New("pipeline: text recognition failed")

	// ErrSynthesisFailed reports that the speech backend errored, cancelled,
	// or produced empty output.
	ErrSynthesisFailed = errors.New("pipeline: speech synthesis failed")

	// ErrTranscodeFailed reports that the voice-message remux failed.
	ErrTranscodeFailed = errors.New("pipeline: voice transcode failed")
)
