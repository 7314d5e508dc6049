package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Renan-T/chart-auto-magic/internal/metrics"
	"github.com/Renan-T/chart-auto-magic/internal/prefs"
	"github.com/Renan-T/chart-auto-magic/internal/store"
	"github.com/Renan-T/chart-auto-magic/internal/utils"
	"github.com/Renan-T/chart-auto-magic/internal/view"
)

// HealthChecker reports whether the pipeline backend answers.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Deps struct {
	Log      *slog.Logger
	Loader   *view.Loader
	Uploader *view.Uploader
	Prefs    *prefs.Store
	Backend  HealthChecker
	Store    store.KV
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

type server struct {
	Deps
	pages *pages
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	s := &server{Deps: d, pages: mustPages()}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", s.readyz)
	mux.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	mux.Group(func(r chi.Router) {
		r.Use(withPrefs(d.Prefs))

		r.Get("/", s.home)
		r.Post("/upload/{control}", s.upload)
		r.Get("/dashboard", s.demo)
		r.Get("/dashboard/{id}", s.dashboard)

		r.Get("/api/view/{id}", s.viewJSON)
		r.Get("/api/uploads/{control}", s.progressJSON)
		r.Get("/prefs", s.getPrefs)
		r.Post("/prefs", s.postPrefs)
	})

	return mux
}

// withPrefs provisions the preferences capability on every request context.
func withPrefs(ps *prefs.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ps != nil {
				r = r.WithContext(prefs.NewContext(r.Context(), ps))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
