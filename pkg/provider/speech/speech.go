// Package speech defines the Synthesizer interface for text-to-speech
// backends that render speech markup into an audio file.
//
// Unlike streaming TTS designs, the relay synthesises one complete document
// per request, so the interface is file-based: the caller hands over an SSML
// document and a target path, the implementation writes the encoded audio
// there. Implementations must be safe for concurrent use.
package speech

import (
	"context"
	"errors"
	"fmt"
)

// Voice identifies the synthesis voice and its locale.
type Voice struct {
	// Locale is the BCP-47 locale code (e.g., "en-US").
	Locale string

	// Name is the backend-specific voice identifier (e.g., "en-US-JennyNeural").
	Name string
}

// ErrEmptyAudio reports that the backend claimed success but produced no
// audio data. Distinguished from ServiceError for diagnostic logging.
var ErrEmptyAudio = errors.New("speech: synthesizer produced no audio")

// ServiceError is a failure reported by the synthesis backend itself
// (a cancellation, quota rejection, or server error). The detail is meant
// for operator logs only and must never be relayed to end users verbatim.
type ServiceError struct {
	// Status is a short machine-readable status (e.g., "canceled", "http 403").
	Status string

	// Detail is the raw backend error text.
	Detail string
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("speech: service error: %s", e.Status)
	}
	return fmt.Sprintf("speech: service error: %s: %s", e.Status, e.Detail)
}

// Synthesizer is the abstraction over any speech synthesis backend.
type Synthesizer interface {
	// SynthesizeToFile renders the SSML document to encoded audio and writes
	// it to outputPath. The SSML carries the voice and locale selection; the
	// implementation does not alter it.
	//
	// On success the file at outputPath exists and is non-empty. Failures are
	// returned as *ServiceError (backend-reported) or wrap ErrEmptyAudio
	// (backend succeeded but wrote nothing). SynthesizeToFile removes any
	// partial output file before returning an error.
	SynthesizeToFile(ctx context.Context, ssml string, outputPath string) error
}
