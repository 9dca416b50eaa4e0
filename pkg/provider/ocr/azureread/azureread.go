// Package azureread provides an Azure Document Intelligence-backed OCR
// provider using the prebuilt-read REST API. It implements the ocr.Provider
// interface.
//
// Analysis is asynchronous on the Azure side: the document is submitted with
// a single POST, Azure replies with an Operation-Location URL, and the client
// polls that URL until the operation reports a terminal status. Read hides
// the polling behind one blocking call bounded by the caller's context.
package azureread

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voxpage/voxpage/pkg/provider/ocr"
)

const (
	analyzePathFmt = "%s/formrecognizer/documentModels/prebuilt-read:analyze?api-version=2023-07-31"

	defaultPollInterval = time.Second
	defaultTimeout      = 2 * time.Minute
)

// Compile-time interface assertion.
var _ ocr.Provider = (*Client)(nil)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithPollInterval sets the delay between status polls. Defaults to 1 s.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 2 min.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client. Mainly useful in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// Client implements ocr.Provider backed by the Azure Document Intelligence
// prebuilt-read model.
type Client struct {
	endpoint     string
	key          string
	pollInterval time.Duration
	httpClient   *http.Client
}

// New creates a Client for the given resource endpoint
// (e.g., "https://myresource.cognitiveservices.azure.com") and API key.
// Both must be non-empty.
func New(endpoint, key string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("azureread: endpoint must not be empty")
	}
	if key == "" {
		return nil, errors.New("azureread: key must not be empty")
	}
	c := &Client{
		endpoint:     strings.TrimRight(endpoint, "/"),
		key:          key,
		pollInterval: defaultPollInterval,
		httpClient:   &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ---- wire types ----

// analyzeResponse is the poll response for an analyze operation.
type analyzeResponse struct {
	Status        string         `json:"status"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
	Error         *apiError      `json:"error"`
}

type analyzeResult struct {
	Pages []pageResult `json:"pages"`
}

type pageResult struct {
	PageNumber int          `json:"pageNumber"`
	Lines      []lineResult `json:"lines"`
}

type lineResult struct {
	Content string `json:"content"`
}

// apiError is the error object Azure embeds in failed operations.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) String() string {
	if e == nil {
		return "unknown"
	}
	return e.Code + ": " + e.Message
}

// Read submits the document from r and polls until Azure reports a terminal
// status. It returns the recognised pages in document order.
func (c *Client) Read(ctx context.Context, r io.Reader) ([]ocr.Page, error) {
	opLocation, err := c.submit(ctx, r)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, opLocation)
}

// submit POSTs the document and returns the Operation-Location URL to poll.
func (c *Client) submit(ctx context.Context, r io.Reader) (string, error) {
	u := fmt.Sprintf(analyzePathFmt, c.endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, r)
	if err != nil {
		return "", fmt.Errorf("azureread: create analyze request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("azureread: submit document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("azureread: analyze returned status %d: %s", resp.StatusCode, body)
	}

	opLocation := resp.Header.Get("Operation-Location")
	if opLocation == "" {
		return "", errors.New("azureread: analyze response missing Operation-Location header")
	}
	return opLocation, nil
}

// poll GETs the operation URL until the status is terminal or ctx expires.
func (c *Client) poll(ctx context.Context, opLocation string) ([]ocr.Page, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		ar, err := c.pollOnce(ctx, opLocation)
		if err != nil {
			return nil, err
		}

		switch ar.Status {
		case "succeeded":
			return convertPages(ar.AnalyzeResult), nil
		case "failed":
			return nil, fmt.Errorf("azureread: analysis failed: %s", ar.Error.String())
		case "notStarted", "running":
			// keep polling
		default:
			return nil, fmt.Errorf("azureread: unexpected operation status %q", ar.Status)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("azureread: poll: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) pollOnce(ctx context.Context, opLocation string) (*analyzeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opLocation, nil)
	if err != nil {
		return nil, fmt.Errorf("azureread: create poll request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azureread: poll operation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("azureread: poll returned status %d: %s", resp.StatusCode, body)
	}

	ar := &analyzeResponse{}
	if err := json.NewDecoder(resp.Body).Decode(ar); err != nil {
		return nil, fmt.Errorf("azureread: decode poll response: %w", err)
	}
	return ar, nil
}

func convertPages(res *analyzeResult) []ocr.Page {
	if res == nil {
		return nil
	}
	pages := make([]ocr.Page, 0, len(res.Pages))
	for _, p := range res.Pages {
		lines := make([]ocr.Line, 0, len(p.Lines))
		for _, l := range p.Lines {
			lines = append(lines, ocr.Line{Content: l.Content})
		}
		pages = append(pages, ocr.Page{Number: p.PageNumber, Lines: lines})
	}
	return pages
}
