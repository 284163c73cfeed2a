package api

import (
	"net/http"
	"strconv"

	"github.com/pyq-ai/pyq-assistant/internal/catalog"
	"github.com/pyq-ai/pyq-assistant/internal/pyq"
)

type examSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Subjects int    `json:"subjects"`
}

func (s *Server) handleListExams(w http.ResponseWriter, r *http.Request) {
	exams := s.catalog.AllExams()
	out := make([]examSummary, len(exams))
	for i, e := range exams {
		out[i] = examSummary{
			ID:       e.ID,
			Name:     e.Name,
			Category: e.Category,
			Subjects: len(e.Subjects),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExam(w http.ResponseWriter, r *http.Request) {
	exam, ok := s.catalog.GetExam(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "exam not found")
		return
	}
	writeJSON(w, http.StatusOK, exam)
}

type dashboardResponse struct {
	Exam         catalog.Exam `json:"exam"`
	Stats        pyq.Stats    `json:"stats"`
	LearningPath []string     `json:"learning_path,omitempty"`
}

// handleDashboard aggregates the exam entry, its question statistics and the
// prerequisite-ordered learning path into one response.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	exam, ok := s.catalog.GetExam(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "exam not found")
		return
	}

	stats, err := s.questions.Stats(exam.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}

	resp := dashboardResponse{Exam: exam, Stats: stats}
	if path, err := catalog.LearningPath(exam); err == nil {
		resp.LearningPath = path
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearchQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Page math mirrors the store's limit rules so offsets stay consistent.
	pageSize := intParam(q.Get("page_size"))
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	page := intParam(q.Get("page"))
	if page < 1 {
		page = 1
	}

	query := pyq.SearchQuery{
		ExamID:   q.Get("exam"),
		Subject:  q.Get("subject"),
		YearFrom: intParam(q.Get("year_from")),
		YearTo:   intParam(q.Get("year_to")),
		Text:     q.Get("q"),
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}

	result, err := s.questions.Search(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// intParam parses a query parameter, treating absence and garbage as zero.
func intParam(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}
