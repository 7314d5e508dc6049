package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type ChartType string

const (
	ChartLine       ChartType = "line"
	ChartArea       ChartType = "area"
	ChartBar        ChartType = "bar"
	ChartStackedBar ChartType = "stacked_bar"
	ChartPie        ChartType = "pie"
	ChartDonut      ChartType = "donut"
)

// Chart is a closed union of chart specifications discriminated by ChartType.
// Callers type-switch on *SeriesChart, *BarChart, *PieChart or *UnknownChart.
type Chart interface {
	ChartType() ChartType
	ChartTitle() string
	clone() Chart
}

// Row is one data point of a cartesian chart, keyed by column name.
type Row map[string]any

func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

type Series struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Dashed bool   `json:"dashed,omitempty"`
}

// SeriesChart covers line and area charts. Every row carries XKey and each series key.
type SeriesChart struct {
	Type   ChartType `json:"type"`
	Title  string    `json:"title"`
	Data   []Row     `json:"data"`
	XKey   string    `json:"xKey"`
	Series []Series  `json:"series"`
}

func (c *SeriesChart) ChartType() ChartType { return c.Type }
func (c *SeriesChart) ChartTitle() string   { return c.Title }

func (c *SeriesChart) clone() Chart {
	out := *c
	out.Data = cloneRows(c.Data)
	if c.Series != nil {
		out.Series = append([]Series(nil), c.Series...)
	}
	return &out
}

// BarChart covers bar and stacked_bar; both carry a single value column.
type BarChart struct {
	Type  ChartType `json:"type"`
	Title string    `json:"title"`
	Data  []Row     `json:"data"`
	XKey  string    `json:"xKey"`
	YKey  string    `json:"yKey"`
}

func (c *BarChart) ChartType() ChartType { return c.Type }
func (c *BarChart) ChartTitle() string   { return c.Title }

func (c *BarChart) clone() Chart {
	out := *c
	out.Data = cloneRows(c.Data)
	return &out
}

type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// PieChart covers pie and donut.
type PieChart struct {
	Type        ChartType `json:"type"`
	Title       string    `json:"title"`
	Data        []Slice   `json:"data"`
	CategoryKey string    `json:"categoryKey"`
	ValueKey    string    `json:"valueKey"`
}

func (c *PieChart) ChartType() ChartType { return c.Type }
func (c *PieChart) ChartTitle() string   { return c.Title }

func (c *PieChart) clone() Chart {
	out := *c
	if c.Data != nil {
		out.Data = append([]Slice(nil), c.Data...)
	}
	return &out
}

// UnknownChart keeps a chart whose type this client does not know, so the
// document still round-trips and the renderer can show a placeholder.
type UnknownChart struct {
	Type  ChartType
	Title string
	Raw   json.RawMessage
}

func (c *UnknownChart) ChartType() ChartType { return c.Type }
func (c *UnknownChart) ChartTitle() string   { return c.Title }

func (c *UnknownChart) clone() Chart {
	out := *c
	out.Raw = append(json.RawMessage(nil), c.Raw...)
	return &out
}

func (c *UnknownChart) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw, nil
	}
	return json.Marshal(struct {
		Type  ChartType `json:"type"`
		Title string    `json:"title"`
	}{c.Type, c.Title})
}

// DecodeChart decodes one chart specification, dispatching on its "type" tag.
func DecodeChart(raw json.RawMessage) (Chart, error) {
	var head struct {
		Type  ChartType `json:"type"`
		Title string    `json:"title"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	var c Chart
	switch head.Type {
	case ChartLine, ChartArea:
		c = &SeriesChart{}
	case ChartBar, ChartStackedBar:
		c = &BarChart{}
	case ChartPie, ChartDonut:
		c = &PieChart{}
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, fmt.Errorf("decode chart: %w", err)
		}
		return &UnknownChart{Type: head.Type, Title: head.Title, Raw: buf.Bytes()}, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode %s chart %q: %w", head.Type, head.Title, err)
	}
	return c, nil
}

type ChartList []Chart

func (l *ChartList) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	if raws == nil {
		*l = nil
		return nil
	}
	out := make(ChartList, 0, len(raws))
	for i, raw := range raws {
		c, err := DecodeChart(raw)
		if err != nil {
			return fmt.Errorf("charts[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	*l = out
	return nil
}

func (l ChartList) Clone() ChartList {
	if l == nil {
		return nil
	}
	out := make(ChartList, len(l))
	for i, c := range l {
		if c != nil {
			out[i] = c.clone()
		}
	}
	return out
}

func cloneRows(rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Row:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
