package httpx

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/Renan-T/chart-auto-magic/internal/metrics"
	"github.com/Renan-T/chart-auto-magic/internal/models"
	"github.com/Renan-T/chart-auto-magic/internal/prefs"
	"github.com/Renan-T/chart-auto-magic/internal/render"
	"github.com/Renan-T/chart-auto-magic/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	home      *template.Template
	dashboard *template.Template
}

func mustPages() *pages {
	funcs := template.FuncMap{
		"kpiValue":  render.FormatKPI,
		"kpiChange": render.FormatChange,
	}
	parse := func(page string) *template.Template {
		return template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page))
	}
	return &pages{
		home:      parse("home.html"),
		dashboard: parse("dashboard.html"),
	}
}

// render executes into a buffer first so a template error never leaves half a page.
func (p *pages) render(w http.ResponseWriter, log *slog.Logger, t *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Error("render page", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

type homePage struct {
	Theme    string
	Prefs    prefs.Prefs
	Controls []view.Progress
	Active   string
	Error    string
}

type chartView struct {
	Type        models.ChartType
	Title       string
	SVG         template.HTML
	Placeholder string
	Legend      []render.SeriesInfo
}

type dashboardPage struct {
	Theme        string
	Title        string
	ID           string
	Live         bool
	FromPipeline bool
	Source       view.Source
	Range        view.MonthRange
	NotFound     bool
	KPIs         []models.KPI
	Charts       []chartView
	Insights     []models.Insight
}

// chartViews renders every chart of doc. Placeholders are kept so the grid keeps its order.
func chartViews(doc *models.DashboardDoc, m *metrics.Metrics, log *slog.Logger) []chartView {
	var out []chartView
	for _, c := range doc.Charts {
		res := render.Chart(c)
		if res == nil {
			continue
		}
		outcome := "ok"
		if !res.OK() {
			outcome = "placeholder"
			if res.Err != nil {
				outcome = "error"
				log.Warn("chart draw failed", slog.String("type", string(res.Type)), slog.String("title", res.Title), slog.String("err", res.Err.Error()))
			}
		}
		m.ChartRendered(string(res.Type), outcome)

		cv := chartView{Type: res.Type, Title: res.Title, Placeholder: res.Placeholder, Legend: res.Series}
		if res.OK() {
			// go-chart writes text verbatim; render escapes it before drawing.
			cv.SVG = template.HTML(res.SVG)
		}
		out = append(out, cv)
	}
	return out
}
