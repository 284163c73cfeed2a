// Package pyq stores and searches previous-year questions.
package pyq

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a question ID does not exist.
var ErrNotFound = errors.New("question not found")

// Question is a single previous-year question.
type Question struct {
	ID        string    `json:"id"`
	ExamID    string    `json:"exam_id"`
	Subject   string    `json:"subject"`
	Topic     string    `json:"topic,omitempty"`
	Year      int       `json:"year"`
	Body      string    `json:"body"`
	Options   []string  `json:"options,omitempty"`
	Answer    string    `json:"answer,omitempty"`
	Marks     int       `json:"marks"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchQuery filters and paginates a question search. Zero values mean
// "no constraint".
type SearchQuery struct {
	ExamID   string
	Subject  string
	YearFrom int
	YearTo   int
	Text     string
	Offset   int
	Limit    int
}

// SearchResult is one page of matches plus the total match count.
type SearchResult struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}

// Stats aggregates question counts for an exam dashboard.
type Stats struct {
	Total     int            `json:"total"`
	BySubject map[string]int `json:"by_subject"`
	ByYear    map[int]int    `json:"by_year"`
}

// Store persists questions.
type Store interface {
	Create(q Question) (string, error)
	Get(id string) (*Question, error)
	Update(q Question) error
	Delete(id string) error
	Search(query SearchQuery) (SearchResult, error)
	Stats(examID string) (Stats, error)
}

const defaultSearchLimit = 20

// normalizeLimit applies the default page size and a sane ceiling.
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > 100 {
		return 100
	}
	return limit
}
