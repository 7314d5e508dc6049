package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Renan-T/chart-auto-magic/internal/models"
)

const (
	Width  = 640
	Height = 320

	// Pie geometry in pixels. A donut is a pie with a hole of DonutInnerRadius.
	OuterRadius      = 100
	DonutInnerRadius = 60
	piePadding       = 40

	maxCategoryLabels = 12
)

const (
	msgUnsupported = "Tipo de gráfico não suportado: %s"
	msgNoData      = "Sem dados para exibir"
	msgDrawFailed  = "Falha ao desenhar gráfico"
)

var palette = []drawing.Color{
	drawing.ColorFromHex("4f46e5"),
	drawing.ColorFromHex("d946ef"),
	drawing.ColorFromHex("06b6d4"),
	drawing.ColorFromHex("22c55e"),
	drawing.ColorFromHex("f59e0b"),
	drawing.ColorFromHex("ef4444"),
}

// SeriesInfo describes one drawn series, mirroring what the legend shows.
type SeriesInfo struct {
	Key    string
	Name   string
	Dashed bool
	Filled bool
	Points int
}

// Result is a rendered chart. Exactly one of SVG and Placeholder is set.
type Result struct {
	Type  models.ChartType
	Title string

	SVG         []byte
	Placeholder string
	Err         error // drawing error behind a placeholder, for logging

	Series []SeriesInfo
	Labels []string // x categories, or "name: value" for pie slices
	YTicks []string

	InnerRadius float64
	OuterRadius float64
}

func (r *Result) OK() bool { return r != nil && len(r.SVG) > 0 }

// Chart renders one chart specification. It depends on nothing but its input and
// never panics: unknown types, empty data and drawing failures become placeholders.
// A nil chart renders nothing.
func Chart(c models.Chart) (res *Result) {
	if c == nil {
		return nil
	}
	res = &Result{}
	defer func() {
		if p := recover(); p != nil {
			res.SVG = nil
			res.Placeholder = msgDrawFailed
			res.Err = fmt.Errorf("render %s chart: %v", res.Type, p)
		}
	}()
	res.Type, res.Title = c.ChartType(), c.ChartTitle()

	switch v := c.(type) {
	case *models.SeriesChart:
		drawSeries(res, v)
	case *models.BarChart:
		drawBars(res, v)
	case *models.PieChart:
		drawPie(res, v)
	default:
		res.Placeholder = fmt.Sprintf(msgUnsupported, c.ChartType())
	}
	return res
}

func drawSeries(res *Result, c *models.SeriesChart) {
	filled := c.Type == models.ChartArea

	res.Labels = make([]string, len(c.Data))
	for i, row := range c.Data {
		res.Labels[i] = label(row[c.XKey])
	}

	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	var series []chart.Series
	for i, s := range c.Series {
		name := s.Label
		if name == "" {
			name = s.Key
		}
		var xs, ys []float64
		for j, row := range c.Data {
			y, ok := toFloat(row[s.Key])
			if !ok || math.IsNaN(y) || math.IsInf(y, 0) {
				continue
			}
			xs = append(xs, float64(j+1))
			ys = append(ys, y)
			minY = math.Min(minY, y)
			maxY = math.Max(maxY, y)
		}
		res.Series = append(res.Series, SeriesInfo{Key: s.Key, Name: name, Dashed: s.Dashed, Filled: filled, Points: len(ys)})
		if len(ys) == 0 {
			continue
		}

		col := palette[i%len(palette)]
		st := chart.Style{StrokeColor: col, StrokeWidth: 2}
		if s.Dashed {
			st.StrokeDashArray = []float64{6, 6}
		}
		if filled {
			st.FillColor = col.WithAlpha(64)
		}
		series = append(series, chart.ContinuousSeries{Name: svgText(name), XValues: xs, YValues: ys, Style: st})
	}
	if len(series) == 0 {
		res.Placeholder = msgNoData
		return
	}

	lo, hi := valueRange(minY, maxY)
	yTicks := valueTicks(lo, hi, 6)
	res.YTicks = tickLabels(yTicks)

	graph := chart.Chart{
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Ticks: categoryTicks(escapeAll(res.Labels), maxCategoryLabels),
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(res.Labels)) + 0.5},
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks:          yTicks,
			ValueFormatter: groupedFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	draw(res, func(w io.Writer) error { return graph.Render(chart.SVG, w) })
}

func drawBars(res *Result, c *models.BarChart) {
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	var bars []chart.Value
	for _, row := range c.Data {
		y, ok := toFloat(row[c.YKey])
		if !ok || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		l := label(row[c.XKey])
		res.Labels = append(res.Labels, l)
		bars = append(bars, chart.Value{
			Value: y,
			Label: svgText(l),
			Style: chart.Style{FillColor: palette[0], StrokeColor: palette[0], StrokeWidth: 1},
		})
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}
	// stacked_bar draws like bar: the document carries a single value column.
	res.Series = []SeriesInfo{{Key: c.YKey, Name: c.YKey, Points: len(bars)}}
	if len(bars) == 0 {
		res.Placeholder = msgNoData
		return
	}

	if step := labelStep(len(bars), maxCategoryLabels); step > 1 {
		for i := range bars {
			if i%step != 0 {
				bars[i].Label = ""
			}
		}
	}

	lo, hi := valueRange(minY, maxY)
	yTicks := valueTicks(lo, hi, 6)
	res.YTicks = tickLabels(yTicks)

	slot := (Width - 120) / len(bars)
	barWidth := slot * 3 / 5
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 1 {
		barWidth = 1
	}
	spacing := slot - barWidth
	if spacing < 1 {
		spacing = 1
	}

	// Bars grow from zero; go-chart otherwise starts them at the range minimum.
	graph := chart.BarChart{
		Width:        Width,
		Height:       Height,
		Background:   chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		BarWidth:     barWidth,
		BarSpacing:   spacing,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks:          yTicks,
			ValueFormatter: groupedFormatter,
		},
		Bars: bars,
	}
	draw(res, func(w io.Writer) error { return graph.Render(chart.SVG, w) })
}

func drawPie(res *Result, c *models.PieChart) {
	res.OuterRadius = OuterRadius
	if c.Type == models.ChartDonut {
		res.InnerRadius = DonutInnerRadius
	}

	var values []chart.Value
	for i, s := range c.Data {
		if !(s.Value > 0) || math.IsInf(s.Value, 0) {
			continue
		}
		res.Labels = append(res.Labels, s.Name+": "+Grouped(s.Value))
		values = append(values, chart.Value{
			Value: s.Value,
			Style: chart.Style{FillColor: palette[i%len(palette)], StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		})
	}
	if len(values) == 0 {
		res.Placeholder = msgNoData
		return
	}

	pc := chart.PieChart{
		Width:      2 * (OuterRadius + piePadding),
		Height:     2 * (OuterRadius + piePadding),
		Background: chart.Style{Padding: chart.Box{Top: piePadding, Left: piePadding, Right: piePadding, Bottom: piePadding}},
		Values:     values,
	}
	labelRatio := 2.0 / 3.0
	if res.InnerRadius > 0 {
		ratio := res.InnerRadius / res.OuterRadius
		pc.Elements = append(pc.Elements, donutHole(ratio))
		labelRatio = (1 + ratio) / 2
	}
	pc.Elements = append(pc.Elements, sliceLabels(values, res.Labels, labelRatio))
	draw(res, func(w io.Writer) error { return pc.Render(chart.SVG, w) })
}

// donutHole paints the inner circle over the pie; ratio is inner/outer radius.
func donutHole(ratio float64) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, _ chart.Style) {
		cx, cy := box.Center()
		radius := float64(minInt(box.Width(), box.Height())) / 2
		r.SetFillColor(drawing.ColorWhite)
		r.SetStrokeColor(drawing.ColorWhite)
		r.SetStrokeWidth(1)
		r.Circle(radius*ratio, cx, cy)
	}
}

// sliceLabels writes "name: value" at the middle of each slice, at ratio of the radius,
// placing them the way go-chart places its own pie labels.
func sliceLabels(values []chart.Value, labels []string, ratio float64) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		cx, cy := box.Center()
		radius := float64(minInt(box.Width(), box.Height())) / 2 * ratio

		var total float64
		for _, v := range values {
			total += v.Value
		}
		chart.Style{Font: defaults.Font, FontSize: 9, FontColor: drawing.ColorBlack}.WriteTextOptionsToRenderer(r)

		var acc float64
		for i, v := range values {
			theta := chart.RadianAdd(chart.PercentToRadians((acc+v.Value/2)/total), math.Pi/2)
			acc += v.Value
			x, y := chart.CirclePoint(cx, cy, radius, theta)
			text := svgText(labels[i])
			tb := r.MeasureText(text)
			r.Text(text, x-tb.Width()/2, y+tb.Height()/2)
		}
	}
}

// svgText escapes text for the SVG document; go-chart writes text nodes verbatim.
func svgText(s string) string { return html.EscapeString(s) }

func escapeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = svgText(s)
	}
	return out
}

func draw(res *Result, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		res.Placeholder = msgDrawFailed
		res.Err = err
		return
	}
	res.SVG = buf.Bytes()
}

func groupedFormatter(v interface{}) string {
	if f, ok := toFloat(v); ok {
		return Grouped(f)
	}
	return fmt.Sprint(v)
}

func tickLabels(ticks []chart.Tick) []string {
	out := make([]string, len(ticks))
	for i, t := range ticks {
		out[i] = t.Label
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
