package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pyq-ai/pyq-assistant/internal/admin"
	"github.com/pyq-ai/pyq-assistant/internal/pyq"
)

func (s *Server) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var q pyq.Question
	if err := decodeBody(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.questions.Create(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.invalidateRoadmap(r, q.ExamID)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// invalidateRoadmap drops the cached roadmap for an exam after an admin
// mutation.
func (s *Server) invalidateRoadmap(r *http.Request, examID string) {
	if s.cache == nil || examID == "" {
		return
	}
	if err := s.cache.Client.Del(r.Context(), "roadmap:"+examID).Err(); err != nil {
		slog.Warn("roadmap cache invalidation failed", "exam", examID, "error", err)
	}
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var q pyq.Question
	if err := decodeBody(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q.ID = r.PathValue("id")

	if err := s.questions.Update(q); err != nil {
		if errors.Is(err, pyq.ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.invalidateRoadmap(r, q.ExamID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	q, _ := s.questions.Get(id)
	if err := s.questions.Delete(id); err != nil {
		if errors.Is(err, pyq.ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if q != nil {
		s.invalidateRoadmap(r, q.ExamID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleExport streams every matching question as an XLSX workbook, one sheet
// per subject.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	examID := r.URL.Query().Get("exam")

	result, err := s.questions.Search(pyq.SearchQuery{ExamID: examID, Limit: 100})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export query failed")
		return
	}

	// Page through the full result set; Search caps each page at 100.
	questions := result.Questions
	for len(questions) < result.Total {
		page, err := s.questions.Search(pyq.SearchQuery{
			ExamID: examID,
			Offset: len(questions),
			Limit:  100,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "export query failed")
			return
		}
		if len(page.Questions) == 0 {
			break
		}
		questions = append(questions, page.Questions...)
	}

	if len(questions) == 0 {
		writeError(w, http.StatusNotFound, "no questions to export")
		return
	}

	// Build the workbook in memory so a failure can still produce an error
	// response instead of a truncated file.
	var buf bytes.Buffer
	if err := admin.ExportXLSX(&buf, questions); err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="questions.xlsx"`)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("export write failed", "error", err)
	}
}
