package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voxpage/voxpage/internal/health"
)

func TestServer_RegistersOperationalRoutes(t *testing.T) {
	t.Parallel()
	srv := Server("127.0.0.1:0",
		health.Probe{Name: "always", Check: func(context.Context) error { return nil }},
	)

	for path, want := range map[string]int{
		"/metrics": http.StatusOK,
		"/healthz": http.StatusOK,
		"/readyz":  http.StatusOK,
	} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, want)
		}
	}
}
