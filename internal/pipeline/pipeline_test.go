package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voxpage/voxpage/internal/lang"
	"github.com/voxpage/voxpage/pkg/provider/ocr"
	ocrmock "github.com/voxpage/voxpage/pkg/provider/ocr/mock"
	"github.com/voxpage/voxpage/pkg/provider/speech"
	speechmock "github.com/voxpage/voxpage/pkg/provider/speech/mock"
)

// fakeRemuxer implements Remuxer and writes a small Ogg payload on success.
type fakeRemuxer struct {
	err   error
	calls int
}

func (f *fakeRemuxer) ToVoice(_ context.Context, _, outputPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("OggS-fake"), 0o600)
}

func english(t *testing.T) lang.Selection {
	t.Helper()
	sel, ok := lang.Default().Match("3")
	if !ok {
		t.Fatal("default catalogue has no English entry")
	}
	return sel
}

// newRunner builds a Runner with mocks and a scoped temp root, returning the
// collaborators for assertions.
func newRunner(t *testing.T, o *ocrmock.Provider, s *speechmock.Synthesizer, rm *fakeRemuxer) (*Runner, string) {
	t.Helper()
	tempRoot := t.TempDir()
	r, err := New(Config{
		OCR:     o,
		Speech:  s,
		Remuxer: rm,
		TempDir: tempRoot,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, tempRoot
}

func stageFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("stage file: %v", err)
	}
	return path
}

// entryCount returns how many entries dir currently holds.
func entryCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	return len(entries)
}

func TestRun_Success(t *testing.T) {
	t.Parallel()
	o := &ocrmock.Provider{ReadPages: []ocr.Page{
		{Number: 1, Lines: []ocr.Line{{Content: "Hello there"}, {Content: "general reader"}}},
	}}
	s := &speechmock.Synthesizer{}
	rm := &fakeRemuxer{}
	r, tempRoot := newRunner(t, o, s, rm)

	res, err := r.Run(context.Background(), stageFile(t, "%PDF"), english(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(res.VoicePath)
	if err != nil {
		t.Fatalf("voice artifact unreadable: %v", err)
	}
	if len(data) == 0 {
		t.Error("voice artifact is empty")
	}

	// The SSML carries the selected voice and the normalized text.
	calls := s.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d synthesis calls, want 1", len(calls))
	}
	if !strings.Contains(calls[0].SSML, `name="en-US-JennyNeural"`) {
		t.Errorf("SSML missing voice: %s", calls[0].SSML)
	}
	if !strings.Contains(calls[0].SSML, "Hello there general reader.") {
		t.Errorf("SSML missing normalized text: %s", calls[0].SSML)
	}

	// The intermediate synthesis file is gone; Close releases the rest.
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(res.VoicePath), "synthesis.mp3")); !os.IsNotExist(statErr) {
		t.Error("intermediate synthesis artifact should be removed on success")
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := entryCount(t, tempRoot); n != 0 {
		t.Errorf("%d temp entries remain after Close, want 0", n)
	}
}

func TestRun_NoTextSkipsSynthesisAndTranscode(t *testing.T) {
	t.Parallel()
	for name, pages := range map[string][]ocr.Page{
		"no pages":        nil,
		"whitespace only": {{Number: 1, Lines: []ocr.Line{{Content: "   "}, {Content: "\t"}}}},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			o := &ocrmock.Provider{ReadPages: pages}
			s := &speechmock.Synthesizer{}
			rm := &fakeRemuxer{}
			r, tempRoot := newRunner(t, o, s, rm)

			_, err := r.Run(context.Background(), stageFile(t, "%PDF"), english(t))
			if !errors.Is(err, ErrNoText) {
				t.Fatalf("got %v, want ErrNoText", err)
			}
			if len(s.Calls()) != 0 {
				t.Error("synthesis must not be attempted for empty documents")
			}
			if rm.calls != 0 {
				t.Error("transcode must not be attempted for empty documents")
			}
			if n := entryCount(t, tempRoot); n != 0 {
				t.Errorf("%d temp entries remain, want 0", n)
			}
		})
	}
}

func TestRun_OCRFailure(t *testing.T) {
	t.Parallel()
	o := &ocrmock.Provider{ReadErr: errors.New("azureread: analyze returned status 500")}
	s := &speechmock.Synthesizer{}
	rm := &fakeRemuxer{}
	r, tempRoot := newRunner(t, o, s, rm)

	_, err := r.Run(context.Background(), stageFile(t, "%PDF"), english(t))
	if !errors.Is(err, ErrOCRFailed) {
		t.Fatalf("got %v, want ErrOCRFailed", err)
	}
	if len(s.Calls()) != 0 {
		t.Error("synthesis must not run after an OCR failure")
	}
	if n := entryCount(t, tempRoot); n != 0 {
		t.Errorf("%d temp entries remain, want 0", n)
	}
}

func TestRun_SynthesisCancelled(t *testing.T) {
	t.Parallel()
	o := &ocrmock.Provider{ReadPages: []ocr.Page{
		{Number: 1, Lines: []ocr.Line{{Content: "some text"}}},
	}}
	s := &speechmock.Synthesizer{Err: &speech.ServiceError{Status: "canceled", Detail: "connection dropped"}}
	rm := &fakeRemuxer{}
	r, tempRoot := newRunner(t, o, s, rm)

	_, err := r.Run(context.Background(), stageFile(t, "%PDF"), english(t))
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("got %v, want ErrSynthesisFailed", err)
	}
	// The wrapped error keeps the backend detail for operator logs.
	if !strings.Contains(err.Error(), "canceled") {
		t.Errorf("error should carry backend detail internally, got: %v", err)
	}
	if rm.calls != 0 {
		t.Error("transcode must not run after a synthesis failure")
	}
	if n := entryCount(t, tempRoot); n != 0 {
		t.Errorf("%d temp entries remain, want 0", n)
	}
}

func TestRun_TranscodeFailureAbortsRun(t *testing.T) {
	t.Parallel()
	o := &ocrmock.Provider{ReadPages: []ocr.Page{
		{Number: 1, Lines: []ocr.Line{{Content: "some text"}}},
	}}
	s := &speechmock.Synthesizer{}
	rm := &fakeRemuxer{err: errors.New("exit status 1")}
	r, tempRoot := newRunner(t, o, s, rm)

	_, err := r.Run(context.Background(), stageFile(t, "%PDF"), english(t))
	if !errors.Is(err, ErrTranscodeFailed) {
		t.Fatalf("got %v, want ErrTranscodeFailed", err)
	}
	if n := entryCount(t, tempRoot); n != 0 {
		t.Errorf("%d temp entries remain, want 0", n)
	}
}

func TestRun_EscapesMarkupCharacters(t *testing.T) {
	t.Parallel()
	o := &ocrmock.Provider{ReadPages: []ocr.Page{
		{Number: 1, Lines: []ocr.Line{{Content: "a < b & c > d"}}},
	}}
	s := &speechmock.Synthesizer{}
	rm := &fakeRemuxer{}
	r, _ := newRunner(t, o, s, rm)

	res, err := r.Run(context.Background(), stageFile(t, "%PDF"), english(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()

	ssml := s.Calls()[0].SSML
	if !strings.Contains(ssml, "a &lt; b &amp; c &gt; d.") {
		t.Errorf("markup characters not escaped: %s", ssml)
	}
	if strings.Contains(ssml, "a < b") {
		t.Errorf("raw markup characters leaked into SSML: %s", ssml)
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	t.Parallel()
	base := Config{
		OCR:     &ocrmock.Provider{},
		Speech:  &speechmock.Synthesizer{},
		Remuxer: &fakeRemuxer{},
	}

	for name, mutate := range map[string]func(*Config){
		"missing OCR":     func(c *Config) { c.OCR = nil },
		"missing speech":  func(c *Config) { c.Speech = nil },
		"missing remuxer": func(c *Config) { c.Remuxer = nil },
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Error("expected constructor error")
			}
		})
	}
}
