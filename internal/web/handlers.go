package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/mountjawa/peakfinder/core"
	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/outwriter"
	"github.com/mountjawa/peakfinder/schema"
)

// Page names, which double as template names.
const (
	homePage   = "home"
	resultPage = "result"
)

// viewState is the per-request page state. Nothing about a page survives the
// request that rendered it.
type viewState struct {
	Page         string
	Provinces    []string
	Difficulties []string
	Form         schema.Preference
	Bounds       contract.Bounds
	Error        string
	Result       *outwriter.RecommendationView
}

// rangeView is the JSON form of an input range.
type rangeView struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// optionsResponse lists everything a client needs to build the preference form.
type optionsResponse struct {
	Provinces    []string             `json:"provinces"`
	Difficulties []string             `json:"difficulties"`
	Defaults     schema.Preference    `json:"defaults"`
	Bounds       map[string]rangeView `json:"bounds"`
	Strategies   []string             `json:"strategies"`
}

// errorResponse is the JSON body of every failed API call.
type errorResponse struct {
	Error string `json:"error"`
}

func templateFuncs(cfg *contract.Config) template.FuncMap {
	precision := cfg.Precision
	if precision <= 0 {
		precision = contract.DefaultPrecision
	}
	return template.FuncMap{
		"score": func(v float64) string { return strconv.FormatFloat(v, 'f', precision, 64) },
	}
}

func (s *Server) newViewState(page string, form schema.Preference) viewState {
	return viewState{
		Page:         page,
		Provinces:    catalog.Provinces(s.env.Catalog),
		Difficulties: catalog.Difficulties(s.env.Artifacts),
		Form:         form,
		Bounds:       s.cfg.Bounds,
	}
}

func (s *Server) defaultPreference() schema.Preference {
	return catalog.DefaultPreference(s.env.Catalog, catalog.Difficulties(s.env.Artifacts))
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, homePage, s.newViewState(homePage, s.defaultPreference()))
}

func (s *Server) handleRecommendPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		state := s.newViewState(homePage, s.defaultPreference())
		state.Error = "The form could not be read."
		s.render(w, http.StatusBadRequest, homePage, state)
		return
	}

	pref, err := parsePreference(r.PostForm.Get, s.defaultPreference())
	if err == nil {
		var rec *schema.Recommendation
		rec, err = core.GetRecommendation(r.Context(), s.cfg, s.env, pref, s.mgr)
		if err == nil {
			view := s.newRecommendationView(rec)
			state := s.newViewState(resultPage, pref)
			state.Result = &view
			s.render(w, http.StatusOK, resultPage, state)
			return
		}
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("Recommendation failed")
	}
	state := s.newViewState(homePage, pref)
	state.Error = err.Error()
	s.render(w, status, homePage, state)
}

func (s *Server) handleRecommendAPI(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	cfg := s.cfg.Clone()

	if raw := query.Get("strategy"); raw != "" {
		strategy := schema.RankStrategy(strings.ToLower(raw))
		if _, ok := schema.ValidRankStrategies[strategy]; !ok {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid strategy %q", raw)})
			return
		}
		cfg.Strategy = strategy
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > contract.MaxResultLimit {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("limit must be between 1 and %d", contract.MaxResultLimit)})
			return
		}
		cfg.ResultLimit = limit
	}

	pref, err := parsePreference(query.Get, s.defaultPreference())
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	rec, err := core.GetRecommendation(r.Context(), cfg, s.env, pref, s.mgr)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.log.Error().Err(err).Msg("Recommendation failed")
		}
		s.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, s.newRecommendationView(rec))
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	b := s.cfg.Bounds
	s.writeJSON(w, http.StatusOK, optionsResponse{
		Provinces:    catalog.Provinces(s.env.Catalog),
		Difficulties: catalog.Difficulties(s.env.Artifacts),
		Defaults:     s.defaultPreference(),
		Bounds: map[string]rangeView{
			"elevation_m":    {Min: b.Elevation.Min, Max: b.Elevation.Max},
			"duration_hours": {Min: b.Duration.Min, Max: b.Duration.Max},
			"distance_km":    {Min: b.Distance.Min, Max: b.Distance.Max},
			"elevation_gain": {Min: b.Gain.Min, Max: b.Gain.Max},
		},
		Strategies: []string{string(schema.BlendStrategy), string(schema.SimilarityStrategy)},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"catalog_size":     len(s.env.Catalog),
		"artifact_version": s.env.Artifacts.Fingerprint(),
	})
}

// handleImage serves a local catalog image, resolved against the catalog's directory.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	for _, m := range s.env.Catalog {
		if m.Row != row {
			continue
		}
		if path, ok := catalog.LocalImage(m, s.catalogDir()); ok {
			http.ServeFile(w, r, path)
			return
		}
		break
	}
	http.NotFound(w, r)
}

// newRecommendationView points results with a local image at the image route
// instead of the placeholder.
func (s *Server) newRecommendationView(rec *schema.Recommendation) outwriter.RecommendationView {
	view := outwriter.NewRecommendationView(rec)
	dir := s.catalogDir()
	for i, r := range view.Results {
		if _, ok := catalog.LocalImage(r.Mountain, dir); ok {
			view.Results[i].ImageURL = "/images/" + strconv.Itoa(r.Row)
		}
	}
	return view
}

func (s *Server) catalogDir() string {
	if s.cfg.CatalogPath == "" {
		return ""
	}
	return filepath.Dir(s.cfg.CatalogPath)
}

// parsePreference reads the preference fields through get. Blank fields keep
// their value from defaults.
func parsePreference(get func(string) string, defaults schema.Preference) (schema.Preference, error) {
	pref := defaults
	if v := strings.TrimSpace(get("province")); v != "" {
		pref.Province = v
	}
	if v := strings.TrimSpace(get("difficulty")); v != "" {
		pref.Difficulty = v
	}

	numbers := []struct {
		name string
		dst  *float64
	}{
		{"elevation_m", &pref.ElevationM},
		{"duration_hours", &pref.DurationHours},
		{"distance_km", &pref.DistanceKM},
		{"elevation_gain", &pref.ElevationGainM},
	}
	for _, n := range numbers {
		raw := strings.TrimSpace(get(n.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return pref, fmt.Errorf("%w: %s must be a number (received %q)", schema.ErrInvalidPreference, n.name, raw)
		}
		*n.dst = v
	}
	return pref, nil
}

// statusFor maps a recommendation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, schema.ErrInvalidPreference), errors.Is(err, schema.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, schema.ErrScorerUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, state viewState) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, state); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Error().Err(err).Msg("Failed to write page")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to write JSON response")
	}
}
