package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/Renan-T/chart-auto-magic/internal/store"
)

type componentStatus struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type readiness struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]componentStatus `json:"components"`
}

func check(ctx context.Context, fn func(context.Context) error) componentStatus {
	start := time.Now()
	err := fn(ctx)
	cs := componentStatus{Status: "healthy", LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		cs.Status = "unhealthy"
		cs.Error = err.Error()
	}
	return cs
}

// readyz reports the pipeline backend and, when it can tell, the local store.
// The viewer still serves cached dashboards without the backend, so only the
// store failing makes it unready.
func (s *server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := readiness{Status: "healthy", Timestamp: time.Now().UTC(), Components: map[string]componentStatus{}}
	status := http.StatusOK

	if s.Backend != nil {
		cs := check(ctx, s.Backend.Health)
		resp.Components["pipeline"] = cs
		if cs.Status != "healthy" {
			resp.Status = "degraded"
		}
	}
	if p, ok := s.Store.(store.Pinger); ok {
		cs := check(ctx, p.Ping)
		resp.Components["store"] = cs
		if cs.Status != "healthy" {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}
