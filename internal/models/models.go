package models

// Unit selects how a KPI value is displayed.
type Unit string

const (
	UnitNumber      Unit = "number"
	UnitPercent     Unit = "percent"
	UnitCurrencyBRL Unit = "currency:BRL"
)

type KPI struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit,omitempty"`

	// Optional comparison against the previous period, e.g. "+12,5% vs mês anterior".
	Change      *float64 `json:"change,omitempty"`
	ChangeLabel string   `json:"changeLabel,omitempty"`
	Trend       string   `json:"trend,omitempty"` // up, down, flat
}

type InsightType string

const (
	InsightPositive InsightType = "positive"
	InsightWarning  InsightType = "warning"
	InsightInfo     InsightType = "info"
)

type Insight struct {
	Type    InsightType `json:"type"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// DashboardDoc is the backend-produced bundle for one normalized dataset.
// Treat it as immutable; use Clone before deriving a filtered view.
type DashboardDoc struct {
	DatasetID string         `json:"dataset_id"`
	KPIs      []KPI          `json:"kpis"`
	Charts    ChartList      `json:"charts"`
	Insights  []Insight      `json:"insights"`
	Filters   map[string]any `json:"filters,omitempty"`
	Version   string         `json:"version"`
}

// Clone returns a structural deep copy of the document.
func (d *DashboardDoc) Clone() *DashboardDoc {
	if d == nil {
		return nil
	}
	out := &DashboardDoc{
		DatasetID: d.DatasetID,
		Version:   d.Version,
		Charts:    d.Charts.Clone(),
	}
	if d.KPIs != nil {
		out.KPIs = make([]KPI, len(d.KPIs))
		for i, k := range d.KPIs {
			if k.Change != nil {
				c := *k.Change
				k.Change = &c
			}
			out.KPIs[i] = k
		}
	}
	if d.Insights != nil {
		out.Insights = append([]Insight(nil), d.Insights...)
	}
	if d.Filters != nil {
		out.Filters = cloneValue(d.Filters).(map[string]any)
	}
	return out
}

// Stage is one informational step reported by the pipeline backend.
// End is nil while the stage has not finished.
type Stage struct {
	Name  string         `json:"name"`
	Start string         `json:"start"`
	End   *string        `json:"end"`
	Meta  map[string]any `json:"meta"`
}

type PipelineResponse struct {
	DatasetID           string       `json:"dataset_id"`
	NormalizedDatasetID string       `json:"normalized_dataset_id"`
	Dashboard           DashboardDoc `json:"dashboard"`
	Stages              []Stage      `json:"stages"`
}
