package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"crewswap/internal/activity"
	"crewswap/internal/audit"
	"crewswap/internal/document"
	"crewswap/internal/identity"
	"crewswap/internal/logger"
	"crewswap/internal/roster"
	"crewswap/internal/session"
	"crewswap/internal/swap"
)

// maxBundleBytes caps the size of an uploaded document bundle.
const maxBundleBytes = 32 << 20

// MatchResponse describes a resolved identity.
type MatchResponse struct {
	Query      string          `json:"query"`
	Alias      string          `json:"alias"`
	Info       string          `json:"info"`
	Position   roster.Position `json:"position"`
	InTraining bool            `json:"in_training"`
	Score      float64         `json:"score"`
}

func matchResponse(m identity.Match) MatchResponse {
	return MatchResponse{
		Query:      m.Query,
		Alias:      m.Row.Alias,
		Info:       m.Row.Info,
		Position:   m.Row.Position,
		InTraining: m.Row.InTraining,
		Score:      m.Score,
	}
}

// ResolveRequest names the person to look up.
type ResolveRequest struct {
	Query string `json:"query" validate:"required"`
}

// ResolveResponse carries the match and the dates the person can give away.
type ResolveResponse struct {
	Match       MatchResponse       `json:"match"`
	GiveOptions map[string][]string `json:"give_options"`
}

// SearchRequest is a swap search. Empty give or take dates return a skipped result.
type SearchRequest struct {
	Query     string   `json:"query" validate:"required"`
	Duty      string   `json:"duty" validate:"omitempty,oneof=flight standby co im CO IM"`
	GiveDate  string   `json:"give_date" validate:"omitempty,datetime=2006-01-02"`
	TakeDates []string `json:"take_dates" validate:"dive,datetime=2006-01-02"`
}

// SearchResponse is the result of a swap search.
type SearchResponse struct {
	Match    MatchResponse    `json:"match"`
	Duty     string           `json:"duty"`
	Outcome  string           `json:"outcome"`
	Searched bool             `json:"searched"`
	Eligible int              `json:"eligible"`
	SA       []swap.Candidate `json:"sa"`
	LI       []swap.Candidate `json:"li"`
}

// DecodeRequest is a single activity cell.
type DecodeRequest struct {
	Cell string `json:"cell" validate:"required"`
}

// DecodedResult is one decoder's interpretation of a cell.
type DecodedResult struct {
	Type   string      `json:"type"`
	Result interface{} `json:"result"`
}

// DecodeResponse is the summary plus every decoder result for a cell.
type DecodeResponse struct {
	Summary activity.Summary `json:"summary"`
	Results []DecodedResult  `json:"results"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"decoders": s.decoders.RegisteredCodes(),
	})
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	resp := DecodeResponse{Summary: activity.Summarize(req.Cell)}
	for _, res := range s.decoders.Dispatch(req.Cell) {
		resp.Results = append(resp.Results, DecodedResult{Type: res.Type(), Result: res})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	if s.artifactDir != "" {
		sess.SetArtifactWriter(s.artifactWriter(sess.ID))
	}
	logger.Debug("session created", "session", sess.ID)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         sess.ID,
		"created_at": sess.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// artifactWriter writes the session's master table under the artifact directory.
func (s *Server) artifactWriter(id string) session.ArtifactWriter {
	return func(m *roster.MasterTable) error {
		dir := filepath.Join(s.artifactDir, id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		f, err := os.Create(filepath.Join(dir, roster.ArtifactName))
		if err != nil {
			return err
		}
		if err := roster.WriteCSV(f, m); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(sessionFrom(r).ID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoadDocuments(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	bundle, err := document.DecodeBundle(http.MaxBytesReader(w, r.Body, maxBundleBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(bundle.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "no documents in bundle")
		return
	}

	docs := bundle.Named()
	res, err := sess.Load(docs)
	switch {
	case errors.Is(err, session.ErrTableHeld):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		// The table is loaded; only the artifact failed.
		logger.Error("failed to write artifact", "session", sess.ID, "error", err)
	}

	s.recordIngests(r, sess.ID, docs, res)

	for _, warn := range res.Warnings {
		logger.Warn("document skipped", "session", sess.ID, "document", warn.Document, "reason", warn.Message)
	}
	logger.Info("documents loaded", "session", sess.ID, "rows", res.Rows, "dates", res.Dates)

	writeJSON(w, http.StatusOK, res)
}

// recordIngests writes one audit entry per failed document and one for the
// documents that were merged into the table.
func (s *Server) recordIngests(r *http.Request, id string, docs []roster.NamedDocument, res session.LoadResult) {
	failed := make(map[string]bool, len(res.Warnings))
	for _, warn := range res.Warnings {
		failed[warn.Document] = true
		s.recordIngest(r, audit.Ingest{Session: id, Document: warn.Document, Warning: warn.Message})
	}

	var merged []string
	for _, d := range docs {
		if !failed[d.Name] {
			merged = append(merged, d.Name)
		}
	}
	if len(merged) > 0 {
		s.recordIngest(r, audit.Ingest{
			Session:  id,
			Document: strings.Join(merged, ", "),
			Rows:     res.Rows,
			Dates:    res.Dates,
		})
	}
}

func (s *Server) recordIngest(r *http.Request, rec audit.Ingest) {
	if err := s.audit.RecordIngest(r.Context(), rec); err != nil {
		logger.Warn("failed to record ingest", "session", rec.Session, "error", err)
	}
}

func (s *Server) handleClearTable(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTableCSV(w http.ResponseWriter, r *http.Request) {
	m := sessionFrom(r).Master()
	if m.Empty() {
		writeError(w, http.StatusNotFound, session.ErrNoTable.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", roster.ArtifactName))
	if err := roster.WriteCSV(w, m); err != nil {
		logger.Error("failed to write table", "error", err)
	}
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	m := sessionFrom(r).Master()
	if m.Empty() {
		writeError(w, http.StatusNotFound, session.ErrNoTable.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"all":       m.Dates(),
		"selection": m.DateColumns(s.dateFilter()),
	})
}

func (s *Server) handleCrew(w http.ResponseWriter, r *http.Request) {
	m := sessionFrom(r).Master()
	if m.Empty() {
		writeError(w, http.StatusNotFound, session.ErrNoTable.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"aliases": m.Aliases()})
}

func (s *Server) handleCrewMember(w http.ResponseWriter, r *http.Request) {
	m := sessionFrom(r).Master()
	if m.Empty() {
		writeError(w, http.StatusNotFound, session.ErrNoTable.Error())
		return
	}
	row, ok := m.Lookup(chi.URLParam(r, "alias"))
	if !ok {
		writeError(w, http.StatusNotFound, "alias not found")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	sess := sessionFrom(r)
	match, ok := s.resolve(w, sess, req.Query)
	if !ok {
		return
	}

	dates := sess.Master().DateColumns(s.dateFilter())
	writeJSON(w, http.StatusOK, ResolveResponse{
		Match: matchResponse(match),
		GiveOptions: map[string][]string{
			swap.Flight.String():  swap.GiveOptions(match.Row, dates, swap.Flight),
			swap.Standby.String(): swap.GiveOptions(match.Row, dates, swap.Standby),
		},
	})
}

// resolve matches query in the session's table, writing the error response
// when there is no table or no close enough alias.
func (s *Server) resolve(w http.ResponseWriter, sess *session.Session, query string) (identity.Match, bool) {
	match, ok, err := sess.Resolve(query, s.resolver)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return identity.Match{}, false
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"error":     "insufficient similarity",
			"query":     query,
			"threshold": s.resolver.EffectiveThreshold(),
		})
		return identity.Match{}, false
	}
	return match, true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	resp, ok := s.search(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearchCSV(w http.ResponseWriter, r *http.Request) {
	resp, ok := s.search(w, r)
	if !ok {
		return
	}

	all := swap.Result{SA: resp.SA, LI: resp.LI}.All()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="candidates.csv"`)
	if err := swap.WriteCSV(w, all); err != nil {
		logger.Error("failed to write candidates", "error", err)
	}
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) (SearchResponse, bool) {
	var req SearchRequest
	if !s.decodeBody(w, r, &req) {
		return SearchResponse{}, false
	}
	duty, err := swap.ParseDuty(req.Duty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return SearchResponse{}, false
	}

	sess := sessionFrom(r)
	match, ok := s.resolve(w, sess, req.Query)
	if !ok {
		return SearchResponse{}, false
	}

	res, err := sess.Search(swap.RequestFor(match.Row, duty, req.GiveDate, req.TakeDates))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return SearchResponse{}, false
	}

	rec := audit.Search{
		Session:    sess.ID,
		Query:      req.Query,
		Alias:      match.Row.Alias,
		Score:      match.Score,
		Duty:       duty.String(),
		GiveDate:   req.GiveDate,
		TakeDates:  req.TakeDates,
		Outcome:    res.Outcome().String(),
		Candidates: len(res.All()),
	}
	if err := s.audit.RecordSearch(r.Context(), rec); err != nil {
		logger.Warn("failed to record search", "session", sess.ID, "error", err)
	}

	return SearchResponse{
		Match:    matchResponse(match),
		Duty:     duty.String(),
		Outcome:  res.Outcome().String(),
		Searched: res.Searched,
		Eligible: res.Eligible,
		SA:       nonNil(res.SA),
		LI:       nonNil(res.LI),
	}, true
}

func nonNil(c []swap.Candidate) []swap.Candidate {
	if c == nil {
		return []swap.Candidate{}
	}
	return c
}

// decodeBody decodes and validates a JSON request body, writing a 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
