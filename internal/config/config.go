// Package config provides the configuration schema and loader for the
// voxpage document-to-speech relay.
//
// Secrets and service credentials come exclusively from the environment
// (see [FromEnv]); the optional YAML file carries tunables only, so a config
// file can be committed without leaking keys.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Duration wraps time.Duration with YAML decoding from strings like "30s".
type Duration time.Duration

// UnmarshalYAML decodes a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root configuration structure for voxpage. It is typically
// loaded from a YAML file using [Load] or [LoadFromReader], then completed
// with credentials via [FromEnv].
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Telegram  TelegramConfig   `yaml:"telegram"`
	OCR       OCRConfig        `yaml:"ocr"`
	Speech    SpeechConfig     `yaml:"speech"`
	Audio     AudioConfig      `yaml:"audio"`
	Upload    UploadConfig     `yaml:"upload"`
	Pipeline  PipelineConfig   `yaml:"pipeline"`
	Languages []LanguageConfig `yaml:"languages"`
}

// ServerConfig holds logging and metrics settings.
type ServerConfig struct {
	// MetricsAddr is the TCP address the Prometheus /metrics endpoint
	// listens on (e.g., ":9090"). Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// TelegramConfig holds chat transport settings. The API token comes from the
// environment, never from the file.
type TelegramConfig struct {
	// Token is the Telegram bot API token. Populated by [FromEnv].
	Token string `yaml:"-"`

	// LongPollTimeout is the update long-poll timeout.
	LongPollTimeout Duration `yaml:"long_poll_timeout"`
}

// OCRConfig holds settings for the document text-recognition backend.
// Endpoint and Key come from the environment.
type OCRConfig struct {
	// Endpoint is the Azure Document Intelligence resource endpoint.
	// Populated by [FromEnv].
	Endpoint string `yaml:"-"`

	// Key is the Azure Document Intelligence API key. Populated by [FromEnv].
	Key string `yaml:"-"`

	// Timeout bounds one recognition run, submission through polling.
	Timeout Duration `yaml:"timeout"`

	// PollInterval is the delay between recognition status polls.
	PollInterval Duration `yaml:"poll_interval"`
}

// SpeechConfig holds settings for the speech-synthesis backend. Key and
// Region come from the environment.
type SpeechConfig struct {
	// Key is the Azure Speech API key. Populated by [FromEnv].
	Key string `yaml:"-"`

	// Region is the Azure Speech resource region (e.g., "westeurope").
	// Populated by [FromEnv].
	Region string `yaml:"-"`

	// Timeout bounds one synthesis call.
	Timeout Duration `yaml:"timeout"`

	// OutputFormat overrides the synthesis output format header.
	OutputFormat string `yaml:"output_format"`
}

// AudioConfig holds settings for the voice-message remux.
type AudioConfig struct {
	// FFmpegPath is the ffmpeg executable. Default: "ffmpeg" via PATH.
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Bitrate is the Opus target bitrate (e.g., "64k").
	Bitrate string `yaml:"bitrate"`

	// Timeout bounds one ffmpeg invocation.
	Timeout Duration `yaml:"timeout"`
}

// UploadConfig constrains inbound files.
type UploadConfig struct {
	// MaxFileSize is the upload ceiling in bytes. Default: 17 MiB.
	MaxFileSize int64 `yaml:"max_file_size"`
}

// PipelineConfig holds orchestration tunables.
type PipelineConfig struct {
	// MaxConcurrent bounds concurrent document-to-speech runs.
	MaxConcurrent int64 `yaml:"max_concurrent"`

	// TempDir is the parent directory for staged uploads and run artifacts.
	// Empty means the OS default.
	TempDir string `yaml:"temp_dir"`
}

// LanguageConfig describes one selectable synthesis language.
type LanguageConfig struct {
	// Key is the reply shortcut offered to the user (e.g., "1").
	Key string `yaml:"key"`

	// Label is the human-readable language name.
	Label string `yaml:"label"`

	// Locale is the BCP-47 locale code (e.g., "uk-UA").
	Locale string `yaml:"locale"`

	// Voice is the neural voice identifier (e.g., "uk-UA-PolinaNeural").
	Voice string `yaml:"voice"`
}
