package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables carrying the required credentials. The process
// refuses to start if any is absent.
const (
	EnvOCREndpoint   = "AZURE_FORM_RECOGNIZER_ENDPOINT"
	EnvOCRKey        = "AZURE_FORM_RECOGNIZER_KEY"
	EnvSpeechKey     = "AZURE_SPEECH_API_KEY"
	EnvSpeechRegion  = "AZURE_REGION"
	EnvTelegramToken = "TELEGRAM_API_TOKEN"
)

// Default returns a Config with all tunables at their defaults and no
// credentials set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			LogLevel: LogInfo,
		},
	}
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Unknown keys are rejected. Useful in tests where configs are constructed
// from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty file is a valid all-defaults config.
			return cfg, nil
		}
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv populates the credential fields of cfg from the environment and
// returns a joined error naming every missing variable.
func FromEnv(cfg *Config) error {
	var errs []error

	read := func(name string, dst *string) {
		v := os.Getenv(name)
		if v == "" {
			errs = append(errs, fmt.Errorf("environment variable %s is required", name))
			return
		}
		*dst = v
	}

	read(EnvOCREndpoint, &cfg.OCR.Endpoint)
	read(EnvOCRKey, &cfg.OCR.Key)
	read(EnvSpeechKey, &cfg.Speech.Key)
	read(EnvSpeechRegion, &cfg.Speech.Region)
	read(EnvTelegramToken, &cfg.Telegram.Token)

	return errors.Join(errs...)
}

// Validate checks that cfg contains a coherent set of tunables. Credentials
// are checked separately by [FromEnv]. It returns a joined error listing all
// validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Upload.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("upload.max_file_size %d must not be negative", cfg.Upload.MaxFileSize))
	}
	if cfg.Pipeline.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_concurrent %d must not be negative", cfg.Pipeline.MaxConcurrent))
	}

	// Language catalogue entries must be complete, with unique keys.
	keysSeen := make(map[string]int, len(cfg.Languages))
	for i, l := range cfg.Languages {
		prefix := fmt.Sprintf("languages[%d]", i)
		if l.Key == "" {
			errs = append(errs, fmt.Errorf("%s.key is required", prefix))
		} else {
			if prev, ok := keysSeen[l.Key]; ok {
				errs = append(errs, fmt.Errorf("%s.key %q is a duplicate of languages[%d]", prefix, l.Key, prev))
			}
			keysSeen[l.Key] = i
		}
		if l.Label == "" {
			errs = append(errs, fmt.Errorf("%s.label is required", prefix))
		}
		if l.Locale == "" {
			errs = append(errs, fmt.Errorf("%s.locale is required", prefix))
		}
		if l.Voice == "" {
			errs = append(errs, fmt.Errorf("%s.voice is required", prefix))
		}
	}

	return errors.Join(errs...)
}
