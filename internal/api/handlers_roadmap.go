package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pyq-ai/pyq-assistant/internal/platform/cache"
	"github.com/pyq-ai/pyq-assistant/internal/roadmap"
)

// handleGetRoadmap serves the catalog roadmap for ?exam=<id>, caching the
// result in Redis when a cache is configured.
func (s *Server) handleGetRoadmap(w http.ResponseWriter, r *http.Request) {
	examID := r.URL.Query().Get("exam")
	if examID == "" {
		writeError(w, http.StatusBadRequest, "exam parameter is required")
		return
	}

	cacheKey := "roadmap:" + examID
	if s.cache != nil {
		var cached roadmap.Roadmap
		err := s.cache.GetJSON(r.Context(), cacheKey, &cached)
		if err == nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("roadmap cache read failed", "exam", examID, "error", err)
		}
	}

	exam, ok := s.catalog.GetExam(examID)
	if !ok {
		writeError(w, http.StatusNotFound, "exam not found")
		return
	}
	rm := exam.Roadmap()

	if s.cache != nil {
		if err := s.cache.SetJSON(r.Context(), cacheKey, rm, s.roadmapTTL); err != nil {
			slog.Warn("roadmap cache write failed", "exam", examID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, rm)
}

type generateRequest struct {
	ExamName string `json:"exam_name"`
}

// handleGenerateRoadmap asks the AI provider for a roadmap for an exam that
// is not in the catalog. Requires authentication.
func (s *Server) handleGenerateRoadmap(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		writeError(w, http.StatusNotImplemented, "roadmap generation is not configured")
		return
	}

	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rm, err := s.generator.Generate(r.Context(), req.ExamName)
	if err != nil {
		slog.Error("roadmap generation failed", "exam", req.ExamName, "error", err)
		writeError(w, http.StatusBadGateway, "roadmap generation failed")
		return
	}
	writeJSON(w, http.StatusOK, rm)
}

type createSessionRequest struct {
	ExamID string `json:"exam_id"`
}

// sessionState is the full derived view of a session: everything the progress
// UI needs is recomputed from (roadmap, position, selection) on each read.
type sessionState struct {
	ID         string              `json:"id"`
	ExamID     string              `json:"exam_id"`
	Position   float64             `json:"position"`
	Selected   []int               `json:"selected"`
	Covered    []string            `json:"covered"`
	Milestones []roadmap.Milestone `json:"milestones"`
	Next       *roadmap.Milestone  `json:"next_milestone,omitempty"`
	NextGap    float64             `json:"next_gap,omitempty"`
	Completing bool                `json:"completing"`
}

func stateOf(e *sessionEntry) sessionState {
	sess := e.Session
	rm := sess.Roadmap()

	covered := sess.Covered()
	coveredNames := make([]string, len(covered))
	for i, sub := range covered {
		coveredNames[i] = sub.Name
	}

	st := sessionState{
		ID:         e.ID,
		ExamID:     e.ExamID,
		Position:   sess.Position(),
		Selected:   sess.Selected().Indices(),
		Covered:    coveredNames,
		Milestones: roadmap.Milestones(rm.Subjects),
		Completing: sess.Completing(),
	}
	if next, gap, ok := sess.Next(); ok {
		st.Next = &next
		st.NextGap = gap
	}
	return st
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exam, ok := s.catalog.GetExam(req.ExamID)
	if !ok {
		writeError(w, http.StatusNotFound, "exam not found")
		return
	}

	entry := s.sessions.Create(exam.ID, exam.Roadmap())
	writeJSON(w, http.StatusCreated, stateOf(entry))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, stateOf(entry))
}

// updateSessionRequest carries exactly one of the two transitions: an
// absolute position move or a subject toggle.
type updateSessionRequest struct {
	Position *float64 `json:"position,omitempty"`
	Toggle   *int     `json:"toggle,omitempty"`
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req updateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch {
	case req.Position != nil && req.Toggle != nil:
		writeError(w, http.StatusBadRequest, "position and toggle are mutually exclusive")
		return
	case req.Position != nil:
		entry.Session.SetPosition(*req.Position)
	case req.Toggle != nil:
		entry.Session.Toggle(*req.Toggle)
	default:
		writeError(w, http.StatusBadRequest, "position or toggle is required")
		return
	}
	writeJSON(w, http.StatusOK, stateOf(entry))
}
