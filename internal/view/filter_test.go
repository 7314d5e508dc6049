package view

import (
	"io"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Renan-T/chart-auto-magic/internal/models"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func monthDoc() *models.DashboardDoc {
	return &models.DashboardDoc{
		DatasetID: "nds_1",
		Charts: models.ChartList{
			&models.SeriesChart{
				Type: models.ChartLine, XKey: "month",
				Data: []models.Row{
					{"month": "2024-01", "v": 1.0},
					{"month": "2024-02", "v": 2.0},
					{"month": "2024-03", "v": 3.0},
				},
				Series: []models.Series{{Key: "v", Label: "V"}},
			},
			&models.SeriesChart{
				Type: models.ChartArea, XKey: "month",
				Data: []models.Row{{"month": "2023-12", "v": 1.0}, {"month": "2024-02", "v": 2.0}, {"v": 9.0}},
			},
			&models.SeriesChart{
				Type: models.ChartLine, XKey: "day",
				Data: []models.Row{{"day": "2024-01-01", "month": "2023-01"}},
			},
			&models.BarChart{
				Type: models.ChartBar, XKey: "month", YKey: "v",
				Data: []models.Row{{"month": "2023-01", "v": 1.0}},
			},
			&models.PieChart{Type: models.ChartPie, Data: []models.Slice{{Name: "A", Value: 1}}},
		},
	}
}

func months(c models.Chart) []string {
	var out []string
	for _, row := range c.(*models.SeriesChart).Data {
		m, _ := row["month"].(string)
		out = append(out, m)
	}
	return out
}

func TestFilterMonthsFromBound(t *testing.T) {
	got := FilterMonths(monthDoc(), MonthRange{From: "2024-02"})

	line := got.Charts[0].(*models.SeriesChart)
	require.Len(t, line.Data, 2)
	assert.Equal(t, models.Row{"month": "2024-02", "v": 2.0}, line.Data[0])
	assert.Equal(t, models.Row{"month": "2024-03", "v": 3.0}, line.Data[1])

	assert.Equal(t, []string{"2024-02"}, months(got.Charts[1]), "area filtered, row without month dropped")
	assert.Len(t, got.Charts[2].(*models.SeriesChart).Data, 1, "non-month x axis untouched")
	assert.Len(t, got.Charts[3].(*models.BarChart).Data, 1, "bar untouched")
	assert.Len(t, got.Charts[4].(*models.PieChart).Data, 1, "pie untouched")
}

func TestFilterMonthsInclusiveBounds(t *testing.T) {
	got := FilterMonths(monthDoc(), MonthRange{From: "2024-01", To: "2024-02"})
	assert.Equal(t, []string{"2024-01", "2024-02"}, months(got.Charts[0]))

	got = FilterMonths(monthDoc(), MonthRange{To: "2024-01"})
	assert.Equal(t, []string{"2024-01"}, months(got.Charts[0]))
	assert.Equal(t, []string{"2023-12"}, months(got.Charts[1]))

	got = FilterMonths(monthDoc(), MonthRange{From: "2025-01", To: "2024-01"})
	assert.Empty(t, got.Charts[0].(*models.SeriesChart).Data)
}

func TestFilterMonthsDoesNotMutateInput(t *testing.T) {
	doc := monthDoc()
	before := monthDoc()

	_ = FilterMonths(doc, MonthRange{From: "2024-02", To: "2024-02"})
	assert.Equal(t, before, doc)
}

func TestFilterMonthsIsIdempotent(t *testing.T) {
	r := MonthRange{From: "2024-02", To: "2024-03"}
	once := FilterMonths(monthDoc(), r)
	twice := FilterMonths(once, r)
	assert.Equal(t, once, twice)
}

func TestFilterMonthsZeroRangeCopies(t *testing.T) {
	doc := monthDoc()
	got := FilterMonths(doc, MonthRange{})
	assert.Equal(t, doc, got)
	assert.NotSame(t, doc, got)
	assert.Nil(t, FilterMonths(nil, MonthRange{From: "2024-01"}))
}

func TestParseMonthRange(t *testing.T) {
	tests := []struct {
		query string
		want  MonthRange
	}{
		{"", MonthRange{}},
		{"from=2024-02", MonthRange{From: "2024-02"}},
		{"from=2024-02&to=2024-06", MonthRange{From: "2024-02", To: "2024-06"}},
		{"from=2024-13&to=2024-06", MonthRange{To: "2024-06"}},
		{"from=Fev&to=2024-6", MonthRange{}},
		{"to=2024-12-01", MonthRange{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseMonthRange(q, quiet))
		})
	}
}
