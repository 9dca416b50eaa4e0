// Package health serves liveness and readiness probes alongside the metrics
// endpoint.
//
//   - /healthz — liveness; a process that can serve HTTP is alive.
//   - /readyz  — readiness; 200 only while every registered probe passes.
//
// Responses are JSON with a "status" field ("ok" or "fail") and, for
// readiness, a "probes" map naming each probe's outcome. The relay's
// standard probes cover the ffmpeg binary and the pipeline's working
// directory.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// probeTimeout bounds a single readiness probe.
const probeTimeout = 5 * time.Second

// Probe is a named readiness check. Check returns nil while the dependency
// can serve and an error describing the problem otherwise.
type Probe struct {
	// Name labels the probe in the /readyz response (e.g. "ffmpeg").
	Name string

	// Check inspects the dependency. It must respect context cancellation.
	Check func(ctx context.Context) error
}

// FFmpegProbe reports whether the remux binary resolves. An empty path checks
// for "ffmpeg" on PATH.
func FFmpegProbe(path string) Probe {
	if path == "" {
		path = "ffmpeg"
	}
	return Probe{
		Name: "ffmpeg",
		Check: func(_ context.Context) error {
			if filepath.IsAbs(path) {
				if _, err := os.Stat(path); err != nil {
					return err
				}
				return nil
			}
			_, err := exec.LookPath(path)
			return err
		},
	}
}

// TempDirProbe reports whether the pipeline's working directory accepts new
// files. An empty dir checks the OS temp directory.
func TempDirProbe(dir string) Probe {
	if dir == "" {
		dir = os.TempDir()
	}
	return Probe{
		Name: "tempdir",
		Check: func(_ context.Context) error {
			f, err := os.CreateTemp(dir, "voxpage-probe-*")
			if err != nil {
				return errors.Join(errors.New("working directory is not writable"), err)
			}
			name := f.Name()
			f.Close()
			return os.Remove(name)
		},
	}
}

type response struct {
	Status string            `json:"status"`
	Probes map[string]string `json:"probes,omitempty"`
}

// Handler serves the /healthz and /readyz routes. Safe for concurrent use;
// the probe list is fixed at construction.
type Handler struct {
	probes []Probe
}

// New creates a Handler evaluating the given probes, in order, on each
// /readyz request.
func New(probes ...Probe) *Handler {
	p := make([]Probe, len(probes))
	copy(p, probes)
	return &Handler{probes: p}
}

// Healthz always answers 200 OK.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// Readyz answers 200 only while every probe passes; otherwise 503 with the
// failing probes named.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	probes := make(map[string]string, len(h.probes))
	allOK := true

	for _, p := range h.probes {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := p.Check(ctx)
		cancel()

		if err != nil {
			probes[p.Name] = "fail: " + err.Error()
			allOK = false
		} else {
			probes[p.Name] = "ok"
		}
	}

	res := response{Status: "ok", Probes: probes}
	status := http.StatusOK
	if !allOK {
		res.Status = "fail"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

// Register adds the probe routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
