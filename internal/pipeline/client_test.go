package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineJSON = `{
  "dataset_id": "ds_1",
  "normalized_dataset_id": "nds_1",
  "dashboard": {"dataset_id": "nds_1", "kpis": [], "charts": [], "insights": [], "version": "v1"},
  "stages": [{"name": "detect", "start": "2024-06-01T10:00:00Z", "end": null, "meta": {}}]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", NewHTTPClient(2*time.Second), nil, nil)
}

func TestLatestHandles404(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	})

	_, err := cl.Latest(context.Background(), "nds_2")
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if reqErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", reqErr.Status)
	}
	if !strings.HasPrefix(err.Error(), "404 Not Found - ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !strings.Contains(reqErr.Body, "not found") {
		t.Fatalf("body not kept: %q", reqErr.Body)
	}
}

func TestSubmitHandles500(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := cl.Submit(context.Background(), Upload{Name: "v.csv", Body: strings.NewReader("a,b\n1,2\n")}, nil)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if reqErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", reqErr.Status)
	}
	assert.Equal(t, "500 Internal Server Error - internal error\n", err.Error())
}

func TestLatestHandlesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	cl := New(srv.URL, NewHTTPClient(100*time.Millisecond), nil, nil)
	_, err := cl.Latest(context.Background(), "nds_1")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T: %v", err, err)
	}
	if netErr.Op != http.MethodGet || !strings.HasSuffix(netErr.URL, "/api/dash/latest/nds_1") {
		t.Fatalf("unexpected error fields: %+v", netErr)
	}
	if errors.Unwrap(err) == nil {
		t.Fatal("expected cause to unwrap")
	}
}

func TestLatestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil, nil, nil).Latest(context.Background(), "x")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestLatestEscapesID(t *testing.T) {
	gotPath := make(chan string, 1)
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath <- r.URL.EscapedPath()
		io.WriteString(w, `{"dataset_id":"a/b","kpis":[],"charts":[],"insights":[],"version":"1"}`)
	})

	doc, err := cl.Latest(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/api/dash/latest/a%2Fb", <-gotPath)
	assert.Equal(t, "a/b", doc.DatasetID)
}

func TestLatestDecodeError(t *testing.T) {
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>")
	})
	_, err := cl.Latest(context.Background(), "x")
	require.Error(t, err)
	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
	assert.Contains(t, err.Error(), "decode response")
}

func TestSubmitSendsOnlySetFields(t *testing.T) {
	off := false
	tests := []struct {
		name   string
		opts   *Options
		fields map[string]string
		absent []string
	}{
		{
			name:   "no options",
			opts:   nil,
			absent: []string{"model", "agg_mode", "drop_all_zero"},
		},
		{
			name:   "empty options",
			opts:   &Options{},
			absent: []string{"model", "agg_mode", "drop_all_zero"},
		},
		{
			name:   "all options",
			opts:   &Options{Model: "gpt-x", AggMode: "groupby", DropAllZero: &off},
			fields: map[string]string{"model": "gpt-x", "agg_mode": "groupby", "drop_all_zero": "false"},
		},
		{
			name:   "agg mode only",
			opts:   &Options{AggMode: "resample"},
			fields: map[string]string{"agg_mode": "resample"},
			absent: []string{"model", "drop_all_zero"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/pipeline/auto", r.URL.Path)
				if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
					return
				}
				f, hdr, err := r.FormFile("file")
				if !assert.NoError(t, err) {
					return
				}
				defer f.Close()
				b, _ := io.ReadAll(f)
				assert.Equal(t, "vendas.csv", hdr.Filename)
				assert.Equal(t, "mes,receita\n2024-01,45000\n", string(b))

				for k, v := range tt.fields {
					assert.Equal(t, []string{v}, r.MultipartForm.Value[k], k)
				}
				for _, k := range tt.absent {
					_, ok := r.MultipartForm.Value[k]
					assert.False(t, ok, "field %s should be absent", k)
				}
				w.WriteHeader(http.StatusAccepted)
				io.WriteString(w, pipelineJSON)
			})

			resp, err := cl.Submit(context.Background(), Upload{
				Name: "vendas.csv",
				Body: strings.NewReader("mes,receita\n2024-01,45000\n"),
			}, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "nds_1", resp.NormalizedDatasetID)
			assert.Equal(t, "nds_1", resp.Dashboard.DatasetID)
			require.Len(t, resp.Stages, 1)
			assert.Nil(t, resp.Stages[0].End)
		})
	}
}

func TestSubmitRequiresBody(t *testing.T) {
	_, err := New("http://127.0.0.1:1", nil, nil, nil).Submit(context.Background(), Upload{Name: "x.csv"}, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	cl := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"status":"ok"}`)
	})

	assert.NoError(t, cl.Health(context.Background()))
	healthy.Store(false)
	var reqErr *RequestError
	assert.ErrorAs(t, cl.Health(context.Background()), &reqErr)
}
