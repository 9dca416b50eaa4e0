// Package mock provides a test double for the ocr.Provider interface.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/voxpage/voxpage/pkg/provider/ocr"
)

// ReadCall records a single invocation of Read.
type ReadCall struct {
	// Ctx is the context passed to Read.
	Ctx context.Context

	// Payload is a copy of the bytes read from the document reader.
	Payload []byte
}

// Provider is a mock implementation of ocr.Provider.
type Provider struct {
	mu sync.Mutex

	// ReadPages is returned by Read when ReadErr is nil.
	ReadPages []ocr.Page

	// ReadErr, if non-nil, is returned as the error from Read.
	ReadErr error

	// readCalls records every invocation of Read.
	readCalls []ReadCall
}

var _ ocr.Provider = (*Provider)(nil)

// Read records the call, drains r, and returns the configured pages or error.
func (p *Provider) Read(ctx context.Context, r io.Reader) ([]ocr.Page, error) {
	payload, _ := io.ReadAll(r)

	p.mu.Lock()
	p.readCalls = append(p.readCalls, ReadCall{Ctx: ctx, Payload: payload})
	p.mu.Unlock()

	if p.ReadErr != nil {
		return nil, p.ReadErr
	}
	return p.ReadPages, nil
}

// ReadCalls returns a copy of all recorded Read invocations.
func (p *Provider) ReadCalls() []ReadCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ReadCall, len(p.readCalls))
	copy(out, p.readCalls)
	return out
}
