// Package mock provides a test double for the speech.Synthesizer interface.
package mock

import (
	"context"
	"os"
	"sync"

	"github.com/voxpage/voxpage/pkg/provider/speech"
)

// SynthesizeCall records a single invocation of SynthesizeToFile.
type SynthesizeCall struct {
	// Ctx is the context passed to SynthesizeToFile.
	Ctx context.Context

	// SSML is the markup document passed to SynthesizeToFile.
	SSML string

	// OutputPath is the target path passed to SynthesizeToFile.
	OutputPath string
}

// Synthesizer is a mock implementation of speech.Synthesizer.
type Synthesizer struct {
	mu sync.Mutex

	// Audio is written to the output path on success. When nil, a short
	// placeholder payload is written instead.
	Audio []byte

	// Err, if non-nil, is returned from SynthesizeToFile without writing
	// any output.
	Err error

	// calls records every invocation.
	calls []SynthesizeCall
}

var _ speech.Synthesizer = (*Synthesizer)(nil)

// SynthesizeToFile records the call and writes the configured audio bytes to
// outputPath, or returns the configured error.
func (s *Synthesizer) SynthesizeToFile(ctx context.Context, ssml string, outputPath string) error {
	s.mu.Lock()
	s.calls = append(s.calls, SynthesizeCall{Ctx: ctx, SSML: ssml, OutputPath: outputPath})
	s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	audio := s.Audio
	if audio == nil {
		audio = []byte("synthesized-audio")
	}
	return os.WriteFile(outputPath, audio, 0o600)
}

// Calls returns a copy of all recorded invocations.
func (s *Synthesizer) Calls() []SynthesizeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SynthesizeCall, len(s.calls))
	copy(out, s.calls)
	return out
}
