// Package audio remuxes synthesized audio into the Ogg/Opus container that
// chat clients render as a voice message with a playback-speed control.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	defaultFFmpegPath = "ffmpeg"
	defaultBitrate    = "64k"
	defaultTimeout    = 30 * time.Second

	// stderrTailLimit bounds how much ffmpeg stderr is kept for logging.
	stderrTailLimit = 2048
)

// Option is a functional option for configuring a Remuxer.
type Option func(*Remuxer)

// WithFFmpegPath sets the ffmpeg executable path. Defaults to "ffmpeg"
// resolved via PATH.
func WithFFmpegPath(path string) Option {
	return func(r *Remuxer) {
		r.ffmpegPath = path
	}
}

// WithBitrate sets the Opus target bitrate (e.g., "64k").
func WithBitrate(bitrate string) Option {
	return func(r *Remuxer) {
		r.bitrate = bitrate
	}
}

// WithTimeout bounds how long a single ffmpeg invocation may run.
func WithTimeout(d time.Duration) Option {
	return func(r *Remuxer) {
		r.timeout = d
	}
}

// Remuxer converts encoded audio files to Ogg/Opus via an external ffmpeg
// process. Safe for concurrent use; each call spawns its own process.
type Remuxer struct {
	ffmpegPath string
	bitrate    string
	timeout    time.Duration

	// runCommand executes the assembled command and returns combined stderr.
	// Replaced in tests.
	runCommand func(ctx context.Context, name string, args []string) error
}

// NewRemuxer creates a Remuxer with the supplied options.
func NewRemuxer(opts ...Option) *Remuxer {
	r := &Remuxer{
		ffmpegPath: defaultFFmpegPath,
		bitrate:    defaultBitrate,
		timeout:    defaultTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	if r.runCommand == nil {
		r.runCommand = runFFmpeg
	}
	return r
}

// ToVoice remuxes the audio at inputPath into Ogg/Opus at outputPath.
// A non-zero ffmpeg exit, a timeout, or an empty output file all fail the
// remux; no partial output is left behind.
func (r *Remuxer) ToVoice(ctx context.Context, inputPath, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := r.args(inputPath, outputPath)
	if err := r.runCommand(ctx, r.ffmpegPath, args); err != nil {
		_ = os.Remove(outputPath)
		return fmt.Errorf("audio: remux %q: %w", inputPath, err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("audio: remux output missing: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(outputPath)
		return errors.New("audio: remux produced an empty file")
	}
	return nil
}

// args assembles the ffmpeg argument list for an Opus voice-message remux.
func (r *Remuxer) args(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-c:a", "libopus",
		"-b:a", r.bitrate,
		"-f", "ogg",
		outputPath,
	}
}

// runFFmpeg executes ffmpeg and folds its stderr tail into the error.
func runFFmpeg(ctx context.Context, name string, args []string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		tail := stderr.Bytes()
		if len(tail) > stderrTailLimit {
			tail = tail[len(tail)-stderrTailLimit:]
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return fmt.Errorf("%w: %s", err, bytes.TrimSpace(tail))
	}
	return nil
}
