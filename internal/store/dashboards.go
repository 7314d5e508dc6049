package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Renan-T/chart-auto-magic/internal/models"
)

const dashPrefix = "dash:"

func DashboardKey(id string) string { return dashPrefix + id }

// Dashboards caches pipeline documents under "dash:<normalized_dataset_id>".
// Entries are overwritten on a new upload and never deleted.
type Dashboards struct {
	kv KV
}

func NewDashboards(kv KV) *Dashboards { return &Dashboards{kv: kv} }

func (d *Dashboards) Put(ctx context.Context, id string, doc *models.DashboardDoc) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode dashboard %q: %w", id, err)
	}
	return d.kv.Set(ctx, DashboardKey(id), b)
}

// Get returns ErrNotFound when nothing is cached for id.
func (d *Dashboards) Get(ctx context.Context, id string) (*models.DashboardDoc, error) {
	b, err := d.kv.Get(ctx, DashboardKey(id))
	if err != nil {
		return nil, err
	}
	var doc models.DashboardDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode cached dashboard %q: %w", id, err)
	}
	return &doc, nil
}

func (d *Dashboards) Has(ctx context.Context, id string) (bool, error) {
	return d.kv.Has(ctx, DashboardKey(id))
}
