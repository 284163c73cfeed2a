package pyq

import (
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store, used in tests and as a
// fallback when no database is configured.
type MemoryStore struct {
	questions map[string]*Question
	norms     map[string]string // id -> normalized body
	mu        sync.RWMutex
}

// NewMemoryStore creates a new in-memory question store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questions: make(map[string]*Question),
		norms:     make(map[string]string),
	}
}

func (s *MemoryStore) Create(q Question) (string, error) {
	if err := validate(q); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := generateID()
	q.ID = id
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	s.questions[id] = &q
	s.norms[id] = Normalize(q.Body)
	return id, nil
}

func (s *MemoryStore) Get(id string) (*Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	copied := *q
	return &copied, nil
}

func (s *MemoryStore) Update(q Question) error {
	if err := validate(q); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.questions[q.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, q.ID)
	}
	q.CreatedAt = existing.CreatedAt
	s.questions[q.ID] = &q
	s.norms[q.ID] = Normalize(q.Body)
	return nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.questions, id)
	delete(s.norms, id)
	return nil
}

func (s *MemoryStore) Search(query SearchQuery) (SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queryNorm := Normalize(query.Text)

	var matched []Question
	for id, q := range s.questions {
		if query.ExamID != "" && q.ExamID != query.ExamID {
			continue
		}
		if query.Subject != "" && q.Subject != query.Subject {
			continue
		}
		if query.YearFrom != 0 && q.Year < query.YearFrom {
			continue
		}
		if query.YearTo != 0 && q.Year > query.YearTo {
			continue
		}
		if !matchText(s.norms[id], queryNorm) {
			continue
		}
		matched = append(matched, *q)
	}

	// Newest papers first, stable within a year.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Year != matched[j].Year {
			return matched[i].Year > matched[j].Year
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	limit := normalizeLimit(query.Limit)
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return SearchResult{Questions: matched[offset:end], Total: total}, nil
}

func (s *MemoryStore) Stats(examID string) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{BySubject: map[string]int{}, ByYear: map[int]int{}}
	for _, q := range s.questions {
		if q.ExamID != examID {
			continue
		}
		stats.Total++
		stats.BySubject[q.Subject]++
		stats.ByYear[q.Year]++
	}
	return stats, nil
}

func validate(q Question) error {
	if q.ExamID == "" {
		return fmt.Errorf("exam_id is required")
	}
	if q.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if q.Body == "" {
		return fmt.Errorf("body is required")
	}
	if q.Year <= 0 {
		return fmt.Errorf("year is required")
	}
	return nil
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
