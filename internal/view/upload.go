package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/Renan-T/chart-auto-magic/internal/metrics"
	"github.com/Renan-T/chart-auto-magic/internal/models"
	"github.com/Renan-T/chart-auto-magic/internal/pipeline"
	"github.com/Renan-T/chart-auto-magic/internal/prefs"
)

var (
	ErrBusy           = errors.New("upload already in progress")
	ErrUnknownControl = errors.New("unknown upload control")
)

type StageStatus string

const (
	StageIdle    StageStatus = "idle"
	StageRunning StageStatus = "running"
	StageDone    StageStatus = "done"
)

// StageNames are cosmetic. "done" on every stage only means the single backend
// call returned; the stages are not tracked individually.
var StageNames = []string{"Upload", "Detect (IA)", "Normalize", "Suggest (IA)"}

type StageProgress struct {
	Name   string      `json:"name"`
	Status StageStatus `json:"status"`
}

// Progress is a snapshot of one upload control.
type Progress struct {
	Control string          `json:"control"`
	Busy    bool            `json:"busy"`
	Stages  []StageProgress `json:"stages"`
	Error   string          `json:"error,omitempty"`
}

// Submitter sends a spreadsheet through the pipeline.
type Submitter interface {
	Submit(ctx context.Context, up pipeline.Upload, opts *pipeline.Options) (*models.PipelineResponse, error)
}

type UploadResult struct {
	DatasetID    string
	NormalizedID string
	Target       string
	FromPipeline bool
	Stages       []models.Stage
}

type control struct {
	busy atomic.Bool

	mu      sync.Mutex
	stages  []StageProgress
	lastErr string
}

func (c *control) set(status func(i int) StageStatus, errMsg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.stages {
		c.stages[i].Status = status(i)
	}
	c.lastErr = errMsg
}

// Uploader runs the upload flow for a fixed set of controls, one submission at a time each.
type Uploader struct {
	client   Submitter
	cache    Cache
	model    string
	m        *metrics.Metrics
	log      *slog.Logger
	controls map[string]*control
	order    []string
}

func NewUploader(client Submitter, cache Cache, model string, m *metrics.Metrics, log *slog.Logger, controls ...string) *Uploader {
	u := &Uploader{client: client, cache: cache, model: model, m: m, log: log, controls: make(map[string]*control)}
	for _, name := range controls {
		c := &control{stages: make([]StageProgress, len(StageNames))}
		for i, n := range StageNames {
			c.stages[i] = StageProgress{Name: n, Status: StageIdle}
		}
		u.controls[name] = c
		u.order = append(u.order, name)
	}
	return u
}

func (u *Uploader) Controls() []string { return append([]string(nil), u.order...) }

// Progress returns ok=false for an unknown control.
func (u *Uploader) Progress(name string) (Progress, bool) {
	c, ok := u.controls[name]
	if !ok {
		return Progress{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Progress{
		Control: name,
		Busy:    c.busy.Load(),
		Stages:  append([]StageProgress(nil), c.stages...),
		Error:   c.lastErr,
	}, true
}

// Submit sends up through the pipeline with the options from the preferences in ctx,
// caches the returned dashboard and returns where to navigate. The control is
// released on every path.
func (u *Uploader) Submit(ctx context.Context, name string, up pipeline.Upload) (*UploadResult, error) {
	c, ok := u.controls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownControl, name)
	}
	ps, err := prefs.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !c.busy.CompareAndSwap(false, true) {
		u.m.Upload(name, "busy")
		return nil, ErrBusy
	}
	defer c.busy.Store(false)

	c.set(func(i int) StageStatus {
		if i == 0 {
			return StageRunning
		}
		return StageIdle
	}, "")

	res, err := u.submit(ctx, ps.Get(), up)
	if err != nil {
		c.set(func(int) StageStatus { return StageIdle }, err.Error())
		u.m.Upload(name, "error")
		u.log.Warn("upload failed", slog.String("control", name), slog.String("file", up.Name), slog.String("err", err.Error()))
		return nil, err
	}
	c.set(func(int) StageStatus { return StageDone }, "")
	u.m.Upload(name, "ok")
	return res, nil
}

func (u *Uploader) submit(ctx context.Context, p prefs.Prefs, up pipeline.Upload) (*UploadResult, error) {
	dropAllZero := p.DropAllZero
	resp, err := u.client.Submit(ctx, up, &pipeline.Options{
		Model:       u.model,
		AggMode:     p.AggMode,
		DropAllZero: &dropAllZero,
	})
	if err != nil {
		return nil, err
	}
	id := resp.NormalizedDatasetID
	if id == "" {
		return nil, errors.New("pipeline response without normalized_dataset_id")
	}
	if err := u.cache.Put(ctx, id, &resp.Dashboard); err != nil {
		return nil, fmt.Errorf("cache dashboard: %w", err)
	}
	return &UploadResult{
		DatasetID:    resp.DatasetID,
		NormalizedID: id,
		Target:       DashboardPath(id),
		FromPipeline: true,
		Stages:       resp.Stages,
	}, nil
}

func DashboardPath(id string) string { return "/dashboard/" + url.PathEscape(id) }
