package view

import (
	"log/slog"
	"net/url"
	"regexp"

	"github.com/Renan-T/chart-auto-magic/internal/models"
)

// MonthKey is the x column month filtering applies to.
const MonthKey = "month"

var monthRE = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthRange bounds are inclusive "YYYY-MM" strings; empty means unbounded.
type MonthRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func (r MonthRange) IsZero() bool { return r.From == "" && r.To == "" }

func (r MonthRange) contains(month string) bool {
	if r.From != "" && month < r.From {
		return false
	}
	if r.To != "" && month > r.To {
		return false
	}
	return true
}

// ParseMonthRange reads from/to query values. A malformed bound is dropped
// and logged; the other bound still applies.
func ParseMonthRange(q url.Values, log *slog.Logger) MonthRange {
	var r MonthRange
	if v := q.Get("from"); v != "" {
		if monthRE.MatchString(v) {
			r.From = v
		} else {
			log.Warn("ignoring invalid month bound", slog.String("param", "from"), slog.String("value", v))
		}
	}
	if v := q.Get("to"); v != "" {
		if monthRE.MatchString(v) {
			r.To = v
		} else {
			log.Warn("ignoring invalid month bound", slog.String("param", "to"), slog.String("value", v))
		}
	}
	return r
}

// FilterMonths returns a deep copy of doc where every line or area chart keyed by
// month keeps only rows inside r. Other charts are copied unchanged. doc is never
// modified and applying the same range twice gives the same result.
func FilterMonths(doc *models.DashboardDoc, r MonthRange) *models.DashboardDoc {
	out := doc.Clone()
	if out == nil || r.IsZero() {
		return out
	}
	for _, c := range out.Charts {
		sc, ok := c.(*models.SeriesChart)
		if !ok || sc.XKey != MonthKey {
			continue
		}
		if sc.Type != models.ChartLine && sc.Type != models.ChartArea {
			continue
		}
		kept := sc.Data[:0]
		for _, row := range sc.Data {
			// Rows without a textual month cannot be placed in the range.
			if m, ok := row[MonthKey].(string); ok && r.contains(m) {
				kept = append(kept, row)
			}
		}
		sc.Data = kept
	}
	return out
}
