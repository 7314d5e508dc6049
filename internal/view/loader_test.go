package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Renan-T/chart-auto-magic/internal/models"
	"github.com/Renan-T/chart-auto-magic/internal/pipeline"
	"github.com/Renan-T/chart-auto-magic/internal/store"
)

type fetchFunc func(ctx context.Context, id string) (*models.DashboardDoc, error)

func (f fetchFunc) Latest(ctx context.Context, id string) (*models.DashboardDoc, error) {
	return f(ctx, id)
}

var notFound = fetchFunc(func(context.Context, string) (*models.DashboardDoc, error) {
	return nil, &pipeline.RequestError{Status: 404, StatusText: "Not Found", Body: `{"detail":"no dashboard"}`}
})

func newCache() *store.Dashboards { return store.NewDashboards(store.NewMemoryStore()) }

func TestLoadPrefersFreshDocument(t *testing.T) {
	cache := newCache()
	require.NoError(t, cache.Put(context.Background(), "nds_1", &models.DashboardDoc{DatasetID: "stale"}))

	l := NewLoader(fetchFunc(func(_ context.Context, id string) (*models.DashboardDoc, error) {
		return &models.DashboardDoc{DatasetID: id, Version: "fresh"}, nil
	}), cache, nil, quiet)

	st := l.Load(context.Background(), "nds_1", MonthRange{})
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, SourceFresh, st.Source)
	assert.Equal(t, "fresh", st.Doc.Version)
	assert.NoError(t, st.Err)
}

// Scenario B: 404 from the backend, cached document shown without a blocking error.
func TestLoadFallsBackToCache(t *testing.T) {
	cache := newCache()
	cached := monthDoc()
	require.NoError(t, cache.Put(context.Background(), "nds_2", cached))

	st := NewLoader(notFound, cache, nil, quiet).Load(context.Background(), "nds_2", MonthRange{})
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, SourceCache, st.Source)
	assert.NoError(t, st.Err)
	assert.Equal(t, cached, st.Doc)
}

// Scenario C: 404 from the backend and nothing cached.
func TestLoadNotFound(t *testing.T) {
	st := NewLoader(notFound, newCache(), nil, quiet).Load(context.Background(), "nds_3", MonthRange{})
	assert.Equal(t, PhaseError, st.Phase)
	assert.Nil(t, st.Doc)
	require.Error(t, st.Err)
	assert.ErrorIs(t, st.Err, ErrNotFound)
	assert.Equal(t, "dashboard not found", st.Err.Error())

	var reqErr *pipeline.RequestError
	require.ErrorAs(t, st.Err, &reqErr)
	assert.Equal(t, 404, reqErr.Status)
}

func TestLoadCorruptCacheIsNotFound(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), store.DashboardKey("x"), []byte("{")))

	st := NewLoader(notFound, store.NewDashboards(kv), nil, quiet).Load(context.Background(), "x", MonthRange{})
	assert.Equal(t, PhaseError, st.Phase)
	assert.True(t, errors.Is(st.Err, ErrNotFound))
}

func TestLoadAppliesMonthRange(t *testing.T) {
	cache := newCache()
	doc := monthDoc()
	require.NoError(t, cache.Put(context.Background(), "nds_4", doc))

	st := NewLoader(notFound, cache, nil, quiet).Load(context.Background(), "nds_4", MonthRange{From: "2024-02"})
	require.Equal(t, PhaseReady, st.Phase)
	assert.Equal(t, []string{"2024-02", "2024-03"}, months(st.Doc.Charts[0]))

	again, err := cache.Get(context.Background(), "nds_4")
	require.NoError(t, err)
	assert.Len(t, again.Charts[0].(*models.SeriesChart).Data, 3, "cached document unchanged")
}

func TestLoadingState(t *testing.T) {
	st := Loading("nds_1")
	assert.Equal(t, PhaseLoading, st.Phase)
	assert.Nil(t, st.Doc)
}
