package azureread

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/voxpage/voxpage/pkg/provider/ocr"
)

// newReadServer serves the two-phase analyze protocol: a 202 with an
// Operation-Location header, then the given poll responses in order.
func newReadServer(t *testing.T, pollBodies []string) *httptest.Server {
	t.Helper()
	var polls atomic.Int64
	mux := http.NewServeMux()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("POST /formrecognizer/documentModels/prebuilt-read:analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Ocp-Apim-Subscription-Key") == "" {
			t.Error("analyze request missing subscription key header")
		}
		w.Header().Set("Operation-Location", srv.URL+"/operations/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		i := int(polls.Add(1)) - 1
		if i >= len(pollBodies) {
			i = len(pollBodies) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pollBodies[i]))
	})
	return srv
}

func TestRead_PollsUntilSucceeded(t *testing.T) {
	t.Parallel()
	srv := newReadServer(t, []string{
		`{"status":"running"}`,
		`{"status":"succeeded","analyzeResult":{"pages":[
			{"pageNumber":1,"lines":[{"content":"first line"},{"content":"second line"}]},
			{"pageNumber":2,"lines":[{"content":"third line"}]}
		]}}`,
	})

	c, err := New(srv.URL, "test-key", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pages, err := c.Read(context.Background(), strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	got := ocr.Text(pages)
	want := "first line\nsecond line\nthird line\n"
	if got != want {
		t.Errorf("Text = %q, want %q", got, want)
	}
}

func TestRead_FailedOperation(t *testing.T) {
	t.Parallel()
	srv := newReadServer(t, []string{
		`{"status":"failed","error":{"code":"InvalidContent","message":"corrupt document"}}`,
	})

	c, err := New(srv.URL, "test-key", WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Read(context.Background(), strings.NewReader("junk"))
	if err == nil {
		t.Fatal("expected error for failed operation")
	}
	if !strings.Contains(err.Error(), "InvalidContent") {
		t.Errorf("error should carry the backend code for operator logs, got: %v", err)
	}
}

func TestRead_ContextCancelledDuringPoll(t *testing.T) {
	t.Parallel()
	srv := newReadServer(t, []string{`{"status":"running"}`})

	c, err := New(srv.URL, "test-key", WithPollInterval(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = c.Read(ctx, strings.NewReader("doc"))
	if err == nil {
		t.Fatal("expected error when context expires mid-poll")
	}
}

func TestNew_RejectsEmptyCredentials(t *testing.T) {
	t.Parallel()
	if _, err := New("", "key"); err == nil {
		t.Error("expected error for empty endpoint")
	}
	if _, err := New("https://example.com", ""); err == nil {
		t.Error("expected error for empty key")
	}
}
