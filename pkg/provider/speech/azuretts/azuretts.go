// Package azuretts provides an Azure Cognitive Services-backed speech
// synthesizer using the text-to-speech REST API. It implements the
// speech.Synthesizer interface.
package azuretts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/voxpage/voxpage/pkg/provider/speech"
)

const (
	endpointFmt = "https://%s.tts.speech.microsoft.com/cognitiveservices/v1"

	// defaultOutputFormat is a high-bitrate MP3; the relay remuxes it to
	// Ogg/Opus afterwards for voice-message playback.
	defaultOutputFormat = "audio-24khz-96kbitrate-mono-mp3"

	defaultTimeout = time.Minute
	userAgent      = "voxpage"
)

// Compile-time interface assertion.
var _ speech.Synthesizer = (*Client)(nil)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithOutputFormat sets the X-Microsoft-OutputFormat header value
// (e.g., "audio-24khz-96kbitrate-mono-mp3").
func WithOutputFormat(format string) Option {
	return func(c *Client) {
		c.outputFormat = format
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 1 min.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithEndpoint overrides the regional endpoint URL. Mainly useful in tests.
func WithEndpoint(u string) Option {
	return func(c *Client) {
		c.endpoint = u
	}
}

// Client implements speech.Synthesizer backed by the Azure TTS REST API.
type Client struct {
	key          string
	endpoint     string
	outputFormat string
	httpClient   *http.Client
}

// New creates a Client for the given API key and Azure region (e.g.,
// "westeurope"). Both must be non-empty.
func New(key, region string, opts ...Option) (*Client, error) {
	if key == "" {
		return nil, errors.New("azuretts: key must not be empty")
	}
	if region == "" {
		return nil, errors.New("azuretts: region must not be empty")
	}
	c := &Client{
		key:          key,
		endpoint:     fmt.Sprintf(endpointFmt, region),
		outputFormat: defaultOutputFormat,
		httpClient:   &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SynthesizeToFile POSTs the SSML document and streams the returned audio to
// outputPath. Any partial output file is removed on failure.
func (c *Client) SynthesizeToFile(ctx context.Context, ssml string, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(ssml))
	if err != nil {
		return fmt.Errorf("azuretts: create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.outputFormat)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("azuretts: synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &speech.ServiceError{
			Status: fmt.Sprintf("http %d", resp.StatusCode),
			Detail: strings.TrimSpace(string(body)),
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("azuretts: create output file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(outputPath)
		return fmt.Errorf("azuretts: write audio: %w", err)
	}
	if n == 0 {
		_ = os.Remove(outputPath)
		return fmt.Errorf("azuretts: %w", speech.ErrEmptyAudio)
	}
	return nil
}
