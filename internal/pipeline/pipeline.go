// Package pipeline sequences one document-to-speech run: OCR, text
// normalization, speech synthesis, and the voice-message remux.
//
// Nothing in the pipeline is retried. Every failure is terminal for the
// current run and classified by one of the sentinel errors in this package;
// the conversation driver resets afterwards so the user can resubmit.
// Temporary artifacts created during a run are confined to a per-run work
// directory and removed on every failure path; on success the caller owns
// the returned [Result] and releases the directory via [Result.Close].
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/voxpage/voxpage/internal/lang"
	"github.com/voxpage/voxpage/internal/observe"
	"github.com/voxpage/voxpage/internal/textnorm"
	"github.com/voxpage/voxpage/pkg/provider/ocr"
	"github.com/voxpage/voxpage/pkg/provider/speech"
)

const (
	defaultMaxConcurrent    = 4
	defaultOCRTimeout       = 2 * time.Minute
	defaultSynthesisTimeout = 2 * time.Minute
)

// Remuxer converts an encoded audio file into the Ogg/Opus voice-message
// container. Implemented by [github.com/voxpage/voxpage/internal/audio.Remuxer].
type Remuxer interface {
	ToVoice(ctx context.Context, inputPath, outputPath string) error
}

// Config holds all dependencies and tunables for a [Runner].
type Config struct {
	// OCR recognises document text. Required.
	OCR ocr.Provider

	// Speech renders SSML to an audio file. Required.
	Speech speech.Synthesizer

	// Remuxer produces the final voice-message artifact. Required.
	Remuxer Remuxer

	// Metrics receives per-stage instrumentation. When nil,
	// [observe.DefaultMetrics] is used.
	Metrics *observe.Metrics

	// MaxConcurrent bounds how many pipeline runs may be in flight at once
	// across all users. Zero means the default of 4.
	MaxConcurrent int64

	// OCRTimeout bounds one OCR submission including polling. Zero means 2 min.
	OCRTimeout time.Duration

	// SynthesisTimeout bounds one synthesis call. Zero means 2 min.
	SynthesisTimeout time.Duration

	// TempDir is the parent directory for per-run work directories.
	// Empty means [os.TempDir].
	TempDir string
}

// Result is a successful pipeline outcome: a playable Ogg/Opus voice
// artifact. Close releases the artifact and its work directory; callers must
// call it once the artifact has been sent.
type Result struct {
	// VoicePath is the path of the final voice-message audio file.
	VoicePath string

	workdir string
}

// Close removes the work directory holding the voice artifact.
func (r *Result) Close() error {
	return os.RemoveAll(r.workdir)
}

// Runner executes document-to-speech runs. Safe for concurrent use; a
// weighted semaphore bounds how many runs execute simultaneously.
type Runner struct {
	ocr     ocr.Provider
	speech  speech.Synthesizer
	remuxer Remuxer
	metrics *observe.Metrics

	sem              *semaphore.Weighted
	ocrTimeout       time.Duration
	synthesisTimeout time.Duration
	tempDir          string
}

// New creates a Runner from cfg. OCR, Speech, and Remuxer are required.
func New(cfg Config) (*Runner, error) {
	if cfg.OCR == nil {
		return nil, errors.New("pipeline: OCR provider is required")
	}
	if cfg.Speech == nil {
		return nil, errors.New("pipeline: speech synthesizer is required")
	}
	if cfg.Remuxer == nil {
		return nil, errors.New("pipeline: remuxer is required")
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	ocrTimeout := cfg.OCRTimeout
	if ocrTimeout <= 0 {
		ocrTimeout = defaultOCRTimeout
	}
	synthesisTimeout := cfg.SynthesisTimeout
	if synthesisTimeout <= 0 {
		synthesisTimeout = defaultSynthesisTimeout
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &Runner{
		ocr:              cfg.OCR,
		speech:           cfg.Speech,
		remuxer:          cfg.Remuxer,
		metrics:          metrics,
		sem:              semaphore.NewWeighted(maxConcurrent),
		ocrTimeout:       ocrTimeout,
		synthesisTimeout: synthesisTimeout,
		tempDir:          tempDir,
	}, nil
}

// Run executes one document-to-speech run for the staged file and the chosen
// language. On success the caller owns the returned Result and must Close it
// after sending the artifact. On failure every temporary file created by the
// run has already been removed, and the returned error wraps one of the
// package sentinels.
func (r *Runner) Run(ctx context.Context, filePath string, sel lang.Selection) (*Result, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("pipeline: acquire run slot: %w", err)
	}
	defer r.sem.Release(1)

	ctx, span := observe.StartSpan(ctx, "pipeline.run")
	defer span.End()

	start := time.Now()
	res, err := r.run(ctx, filePath, sel)
	r.metrics.PipelineDuration.Record(ctx, time.Since(start).Seconds())
	r.metrics.RecordPipelineRun(ctx, runStatus(err))
	return res, err
}

func (r *Runner) run(ctx context.Context, filePath string, sel lang.Selection) (result *Result, err error) {
	workdir, err := os.MkdirTemp(r.tempDir, "voxpage-run-")
	if err != nil {
		return nil, fmt.Errorf("pipeline: create work dir: %w", err)
	}
	// The work directory survives only a successful run; then the caller
	// releases it through Result.Close.
	defer func() {
		if err != nil {
			if rmErr := os.RemoveAll(workdir); rmErr != nil {
				observe.Logger(ctx).Warn("work dir cleanup failed", "dir", workdir, "err", rmErr)
			}
		}
	}()

	// 1. OCR.
	text, err := r.recognize(ctx, filePath)
	if err != nil {
		return nil, err
	}

	// 2. Blank documents are an expected outcome, not a failure.
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	// 3–4. Normalize and wrap in speech markup.
	normalized := textnorm.Normalize(text)
	ssml := buildSSML(normalized, speech.Voice{Locale: sel.Locale, Name: sel.Voice})

	// 5–6. Synthesize to an intermediate file.
	synthPath := filepath.Join(workdir, "synthesis.mp3")
	if err := r.synthesize(ctx, ssml, synthPath); err != nil {
		return nil, err
	}

	// 7. Remux into the voice-message container. No fallback to the
	// unremuxed artifact: a failed remux aborts the run.
	voicePath := filepath.Join(workdir, "voice.ogg")
	if err := r.transcode(ctx, synthPath, voicePath); err != nil {
		return nil, err
	}

	// The intermediate synthesis artifact is no longer needed.
	if rmErr := os.Remove(synthPath); rmErr != nil {
		observe.Logger(ctx).Warn("intermediate audio cleanup failed", "path", synthPath, "err", rmErr)
	}

	return &Result{VoicePath: voicePath, workdir: workdir}, nil
}

// recognize submits the staged file for OCR and returns the concatenated
// line text in reading order.
func (r *Runner) recognize(ctx context.Context, filePath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.ocrTimeout)
	defer cancel()

	ctx, span := observe.StartSpan(ctx, "pipeline.ocr")
	defer span.End()

	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: open staged file: %w", ErrOCRFailed, err)
	}
	defer f.Close()

	start := time.Now()
	pages, err := r.ocr.Read(ctx, f)
	r.metrics.OCRDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		r.metrics.RecordProviderError(ctx, "ocr")
		return "", fmt.Errorf("%w: %w", ErrOCRFailed, err)
	}
	return ocr.Text(pages), nil
}

// synthesize renders the SSML to outputPath and verifies the artifact exists
// and is non-empty.
func (r *Runner) synthesize(ctx context.Context, ssml, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, r.synthesisTimeout)
	defer cancel()

	ctx, span := observe.StartSpan(ctx, "pipeline.synthesize")
	defer span.End()

	start := time.Now()
	err := r.speech.SynthesizeToFile(ctx, ssml, outputPath)
	r.metrics.SynthesisDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		r.metrics.RecordProviderError(ctx, "speech")
		return fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("%w: output missing: %w", ErrSynthesisFailed, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %w", ErrSynthesisFailed, speech.ErrEmptyAudio)
	}
	return nil
}

func (r *Runner) transcode(ctx context.Context, inputPath, outputPath string) error {
	ctx, span := observe.StartSpan(ctx, "pipeline.transcode")
	defer span.End()

	start := time.Now()
	err := r.remuxer.ToVoice(ctx, inputPath, outputPath)
	r.metrics.TranscodeDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTranscodeFailed, err)
	}
	return nil
}

// runStatus maps a run error to the metrics status attribute.
func runStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoText):
		return "no_text"
	case errors.Is(err, ErrOCRFailed):
		return "ocr_failed"
	case errors.Is(err, ErrSynthesisFailed):
		return "synthesis_failed"
	case errors.Is(err, ErrTranscodeFailed):
		return "transcode_failed"
	default:
		return "error"
	}
}
