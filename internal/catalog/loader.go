// Package catalog loads exam definitions and concept maps from a YAML content
// directory and serves them to the roadmap and dashboard endpoints.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader loads and caches exam content from the filesystem.
type Loader struct {
	rootDir string
	exams   map[string]Exam
	mu      sync.RWMutex
}

// NewLoader creates a new catalog loader and loads all content.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir: rootDir,
		exams:   make(map[string]Exam),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	slog.Info("catalog loaded", "exams", len(l.exams))
	return l, nil
}

// GetExam returns an exam by ID.
func (l *Loader) GetExam(id string) (Exam, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.exams[id]
	return e, ok
}

// AllExams returns all loaded exams sorted by ID.
func (l *Loader) AllExams() []Exam {
	l.mu.RLock()
	defer l.mu.RUnlock()
	exams := make([]Exam, 0, len(l.exams))
	for _, e := range l.exams {
		exams = append(exams, e)
	}
	sort.Slice(exams, func(i, j int) bool { return exams[i].ID < exams[j].ID })
	return exams
}

// Reload re-reads the content directory, replacing the cache.
func (l *Loader) Reload() error {
	l.mu.Lock()
	l.exams = make(map[string]Exam)
	l.mu.Unlock()
	return l.loadAll()
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		return l.loadExam(path)
	})
}

func (l *Loader) loadExam(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var exam Exam
	if err := yaml.Unmarshal(data, &exam); err != nil {
		slog.Warn("skipping invalid exam YAML", "path", path, "error", err)
		return nil
	}

	if exam.ID == "" {
		return nil // Not an exam file
	}

	l.mu.Lock()
	l.exams[exam.ID] = exam
	l.mu.Unlock()

	return nil
}
