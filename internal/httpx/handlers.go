package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Renan-T/chart-auto-magic/internal/models"
	"github.com/Renan-T/chart-auto-magic/internal/pipeline"
	"github.com/Renan-T/chart-auto-magic/internal/prefs"
	"github.com/Renan-T/chart-auto-magic/internal/view"
)

const (
	// flashCookie carries the one-shot "came from the pipeline" flag to the dashboard page.
	flashCookie = "autodash_from_pipeline"

	maxUploadMemory = 32 << 20
)

func (s *server) home(w http.ResponseWriter, r *http.Request) {
	s.renderHome(w, r, http.StatusOK, "", "")
}

func (s *server) renderHome(w http.ResponseWriter, r *http.Request, status int, active, errMsg string) {
	ps := prefs.MustFromContext(r.Context(), "home page")
	p := homePage{Prefs: ps.Get(), Active: active, Error: errMsg}
	p.Theme = p.Prefs.Theme
	for _, name := range s.Uploader.Controls() {
		if pr, ok := s.Uploader.Progress(name); ok {
			p.Controls = append(p.Controls, pr)
		}
	}
	s.pages.render(w, s.Log, s.pages.home, status, p)
}

func (s *server) upload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "control")
	if _, ok := s.Uploader.Progress(name); !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.renderHome(w, r, http.StatusBadRequest, name, "Selecione um arquivo para enviar.")
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		s.renderHome(w, r, http.StatusBadRequest, name, "Selecione um arquivo para enviar.")
		return
	}
	defer f.Close()

	res, err := s.Uploader.Submit(r.Context(), name, pipeline.Upload{Name: hdr.Filename, Body: f})
	switch {
	case errors.Is(err, view.ErrBusy):
		s.renderHome(w, r, http.StatusConflict, name, "Já existe um envio em andamento.")
		return
	case err != nil:
		s.renderHome(w, r, http.StatusBadGateway, name, err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "1",
		Path:     res.Target,
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, res.Target, http.StatusSeeOther)
}

// consumeFlash reports whether the request carries the pipeline flag and clears it.
func consumeFlash(w http.ResponseWriter, r *http.Request) bool {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return false
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: r.URL.Path, MaxAge: -1, HttpOnly: true})
	return c.Value == "1"
}

func (s *server) demo(w http.ResponseWriter, r *http.Request) {
	ps := prefs.MustFromContext(r.Context(), "dashboard page")
	doc := view.DemoDashboard()
	s.pages.render(w, s.Log, s.pages.dashboard, http.StatusOK, dashboardPage{
		Theme:    ps.Get().Theme,
		Title:    "Dashboard Comercial",
		KPIs:     doc.KPIs,
		Charts:   chartViews(doc, s.Metrics, s.Log),
		Insights: doc.Insights,
	})
}

func (s *server) dashboard(w http.ResponseWriter, r *http.Request) {
	ps := prefs.MustFromContext(r.Context(), "dashboard page")
	id := pathID(r)
	st := s.Loader.Load(r.Context(), id, view.ParseMonthRange(r.URL.Query(), s.Log))

	p := dashboardPage{
		Theme:        ps.Get().Theme,
		Title:        "Dashboard " + id,
		ID:           id,
		Live:         true,
		FromPipeline: consumeFlash(w, r),
		Source:       st.Source,
		Range:        st.Range,
	}
	if st.Phase != view.PhaseReady {
		p.NotFound = true
		s.pages.render(w, s.Log, s.pages.dashboard, http.StatusNotFound, p)
		return
	}
	p.KPIs = st.Doc.KPIs
	p.Charts = chartViews(st.Doc, s.Metrics, s.Log)
	p.Insights = st.Doc.Insights
	s.pages.render(w, s.Log, s.pages.dashboard, http.StatusOK, p)
}

type viewResponse struct {
	Phase     view.Phase           `json:"phase"`
	ID        string               `json:"id"`
	Source    view.Source          `json:"source,omitempty"`
	Range     view.MonthRange      `json:"range"`
	Error     string               `json:"error,omitempty"`
	Dashboard *models.DashboardDoc `json:"dashboard,omitempty"`
}

func (s *server) viewJSON(w http.ResponseWriter, r *http.Request) {
	st := s.Loader.Load(r.Context(), pathID(r), view.ParseMonthRange(r.URL.Query(), s.Log))
	resp := viewResponse{Phase: st.Phase, ID: st.ID, Source: st.Source, Range: st.Range, Dashboard: st.Doc}
	status := http.StatusOK
	if st.Err != nil {
		resp.Error = st.Err.Error()
		status = http.StatusNotFound
	}
	writeJSON(w, status, resp)
}

func (s *server) progressJSON(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Uploader.Progress(chi.URLParam(r, "control"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown upload control")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) getPrefs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, prefs.MustFromContext(r.Context(), "prefs api").Get())
}

// postPrefs applies the fields present in the form. Browsers are sent back home;
// JSON clients get the stored record.
func (s *server) postPrefs(w http.ResponseWriter, r *http.Request) {
	ps := prefs.MustFromContext(r.Context(), "prefs api")
	wantsJSON := strings.Contains(r.Header.Get("Accept"), "application/json")
	fail := func(status int, msg string) {
		if wantsJSON {
			writeJSONError(w, status, msg)
			return
		}
		http.Error(w, msg, status)
	}

	if err := r.ParseForm(); err != nil {
		fail(http.StatusBadRequest, "bad form")
		return
	}
	ctx := r.Context()
	if v, ok := last(r.PostForm, "agg_mode"); ok {
		if err := ps.SetAggMode(ctx, v); err != nil {
			fail(statusFor(err), err.Error())
			return
		}
	}
	if v, ok := last(r.PostForm, "drop_all_zero"); ok {
		b, err := parseCheckbox(v)
		if err != nil {
			fail(http.StatusBadRequest, "drop_all_zero must be true or false")
			return
		}
		if err := ps.SetDropAllZero(ctx, b); err != nil {
			fail(statusFor(err), err.Error())
			return
		}
	}
	if v, ok := last(r.PostForm, "theme"); ok {
		if err := ps.SetTheme(ctx, v); err != nil {
			fail(statusFor(err), err.Error())
			return
		}
	}

	if wantsJSON {
		writeJSON(w, http.StatusOK, ps.Get())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func statusFor(err error) int {
	if errors.Is(err, prefs.ErrInvalidValue) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// last returns the final value of a repeated field, so a checkbox after its hidden
// fallback wins.
func last(form url.Values, key string) (string, bool) {
	vs, ok := form[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

func parseCheckbox(v string) (bool, error) {
	if v == "on" {
		return true, nil
	}
	return strconv.ParseBool(v)
}

func pathID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if u, err := url.PathUnescape(id); err == nil {
		return u
	}
	return id
}
