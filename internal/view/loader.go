package view

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Renan-T/chart-auto-magic/internal/metrics"
	"github.com/Renan-T/chart-auto-magic/internal/models"
	"github.com/Renan-T/chart-auto-magic/internal/store"
)

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

type Source string

const (
	SourceFresh Source = "fresh"
	SourceCache Source = "cache"
)

// ErrNotFound is the blocking state: neither the backend nor the cache has the dashboard.
var ErrNotFound = errors.New("dashboard not found")

// NotFoundError keeps the fetch failure behind a not-found state for logs.
type NotFoundError struct {
	ID    string
	Fetch error
}

func (e *NotFoundError) Error() string        { return ErrNotFound.Error() }
func (e *NotFoundError) Unwrap() error        { return e.Fetch }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Fetcher reads the latest dashboard from the backend.
type Fetcher interface {
	Latest(ctx context.Context, id string) (*models.DashboardDoc, error)
}

// Cache is the local dashboard cache keyed by normalized dataset id.
type Cache interface {
	Get(ctx context.Context, id string) (*models.DashboardDoc, error)
	Put(ctx context.Context, id string, doc *models.DashboardDoc) error
}

// State is what the dashboard view shows. Doc is nil unless Phase is ready.
type State struct {
	Phase  Phase
	ID     string
	Doc    *models.DashboardDoc
	Source Source
	Range  MonthRange
	Err    error
}

func Loading(id string) *State { return &State{Phase: PhaseLoading, ID: id} }

type Loader struct {
	fetch Fetcher
	cache Cache
	m     *metrics.Metrics
	log   *slog.Logger
}

func NewLoader(fetch Fetcher, cache Cache, m *metrics.Metrics, log *slog.Logger) *Loader {
	return &Loader{fetch: fetch, cache: cache, m: m, log: log}
}

// Load prefers the backend, falls back to the cache silently and fails only
// when both miss. The returned document is filtered by r when r is set.
func (l *Loader) Load(ctx context.Context, id string, r MonthRange) *State {
	st := Loading(id)
	st.Range = r

	doc, err := l.fetch.Latest(ctx, id)
	if err == nil {
		st.Source = SourceFresh
	} else {
		l.log.Info("latest dashboard unavailable, trying cache", slog.String("id", id), slog.String("err", err.Error()))
		cached, cerr := l.cache.Get(ctx, id)
		l.m.CacheLookup(cerr == nil)
		if cerr != nil {
			if !errors.Is(cerr, store.ErrNotFound) {
				l.log.Warn("dashboard cache read failed", slog.String("id", id), slog.String("err", cerr.Error()))
			}
			st.Phase = PhaseError
			st.Err = &NotFoundError{ID: id, Fetch: err}
			return st
		}
		doc = cached
		st.Source = SourceCache
	}

	st.Phase = PhaseReady
	st.Doc = FilterMonths(doc, r)
	return st
}
