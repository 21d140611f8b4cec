package web

import (
	"cmp"
	"net/http"
	"slices"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/pension/internal/core"
	"github.com/JonMunkholm/pension/internal/logging"
	"github.com/JonMunkholm/pension/internal/metrics"
	"github.com/JonMunkholm/pension/internal/web/templates"
)

// Page limits.
const (
	searchPageLimit = 100
	peerLimit       = 10
)

// findResponse is the body of GET /api/find.
type findResponse struct {
	Query   string       `json:"query"`
	Count   int          `json:"count"`
	Matches []core.Match `json:"matches"`
}

// dataResponse is the body of GET /api/data.
type dataResponse struct {
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int           `json:"total"`
	Records  []core.Record `json:"records"`
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string `json:"status"`
	Rows   int    `json:"rows"`
	LoadID string `json:"load_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status: "ok",
		Rows:   s.registry.Len(),
		LoadID: s.registry.Stats().LoadID.String(),
	})
}

// renderPage writes a full HTML page with the given status.
func renderPage(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}

// handleSearchPage renders the search form, and the results once a name is submitted.
func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("name") {
		renderPage(w, r, http.StatusOK, templates.SearchPage(templates.SearchParams{}))
		return
	}

	raw := r.URL.Query().Get("name")
	name, err := s.parseName(r)
	if err != nil {
		msg := core.MapError(err)
		renderPage(w, r, statusFor(err), templates.SearchPage(templates.SearchParams{Name: raw, Error: &msg}))
		return
	}

	start := time.Now()
	matches := s.registry.Find(name)
	s.metrics.ObserveQuery(metrics.OpFind, start, len(matches), nil)

	renderPage(w, r, http.StatusOK, templates.SearchPage(templates.SearchParams{
		Name:     name,
		Searched: true,
		Matches:  matches,
		Limit:    searchPageLimit,
	}))
}

// handleCompanyPage renders the detail page: record, industry comparison and peers.
func (s *Server) handleCompanyPage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("name")
	name, err := s.parseName(r)
	if err == nil {
		err = s.renderCompany(w, r, name)
	}
	if err != nil {
		msg := core.MapError(err)
		if statusFor(err) >= http.StatusInternalServerError {
			logging.FromContext(r.Context()).Error("company page", "name", raw, "error", err)
		}
		renderPage(w, r, statusFor(err), templates.SearchPage(templates.SearchParams{Name: raw, Error: &msg}))
	}
}

func (s *Server) renderCompany(w http.ResponseWriter, r *http.Request, name string) error {
	start := time.Now()
	rec, err := s.registry.CompanyInfo(name)
	if err != nil {
		s.metrics.ObserveQuery(metrics.OpCompany, start, 0, err)
		return err
	}
	s.metrics.ObserveQuery(metrics.OpCompany, start, 1, nil)

	start = time.Now()
	comparison, err := s.registry.Compare(name)
	s.metrics.ObserveQuery(metrics.OpCompare, start, 1, err)
	if err != nil {
		return err
	}

	renderPage(w, r, http.StatusOK, templates.CompanyPage(templates.CompanyParams{
		Query:      name,
		Record:     rec,
		Comparison: comparison,
		Peers:      s.peers(rec),
	}))
	return nil
}

// peers returns the largest employers in rec's industry, always including rec itself.
func (s *Server) peers(rec core.Record) []core.Record {
	peers := s.registry.Industry(rec.IndustryCode)
	slices.SortStableFunc(peers, func(a, b core.Record) int {
		return cmp.Compare(b.Enrollees, a.Enrollees)
	})
	if len(peers) <= peerLimit {
		return peers
	}
	top := peers[:peerLimit]
	if slices.ContainsFunc(top, func(p core.Record) bool { return p.Index == rec.Index }) {
		return top
	}
	return append(top[:peerLimit-1:peerLimit-1], rec)
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	name, err := s.parseName(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	start := time.Now()
	matches := s.registry.Find(name)
	s.metrics.ObserveQuery(metrics.OpFind, start, len(matches), nil)

	render.JSON(w, r, findResponse{Query: name, Count: len(matches), Matches: matches})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	name, err := s.parseName(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	start := time.Now()
	comparison, err := s.registry.Compare(name)
	s.metrics.ObserveQuery(metrics.OpCompare, start, 1, err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	render.JSON(w, r, comparison)
}

func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	name, err := s.parseName(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	start := time.Now()
	rec, err := s.registry.CompanyInfo(name)
	s.metrics.ObserveQuery(metrics.OpCompany, start, 1, err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	render.JSON(w, r, rec)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	q, err := s.parsePage(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	start := time.Now()
	records, total := s.registry.Page(q.Page, q.PageSize)
	s.metrics.ObserveQuery(metrics.OpData, start, len(records), nil)

	render.JSON(w, r, dataResponse{
		Page:     q.Page,
		PageSize: q.PageSize,
		Total:    total,
		Records:  records,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.registry.Stats())
}
