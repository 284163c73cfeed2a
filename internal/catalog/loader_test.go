package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pyq-ai/pyq-assistant/internal/catalog"
)

func TestLoader_LoadExams(t *testing.T) {
	dir := setupTestCatalog(t)

	loader, err := catalog.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	exams := loader.AllExams()
	if len(exams) != 1 {
		t.Fatalf("AllExams() = %d exams, want 1", len(exams))
	}
	if exams[0].ID != "gate-cs" {
		t.Errorf("exam ID = %q, want gate-cs", exams[0].ID)
	}
}

func TestLoader_GetExam(t *testing.T) {
	dir := setupTestCatalog(t)

	loader, err := catalog.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	exam, found := loader.GetExam("gate-cs")
	if !found {
		t.Fatal("GetExam(gate-cs) not found")
	}
	if len(exam.Subjects) != 3 {
		t.Errorf("exam has %d subjects, want 3", len(exam.Subjects))
	}
	if exam.Subjects[0].Name != "Discrete Mathematics" {
		t.Errorf("subjects[0].Name = %q, want Discrete Mathematics", exam.Subjects[0].Name)
	}
}

func TestLoader_GetExam_NotFound(t *testing.T) {
	dir := setupTestCatalog(t)

	loader, err := catalog.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	_, found := loader.GetExam("NONEXISTENT")
	if found {
		t.Error("GetExam(NONEXISTENT) should not be found")
	}
}

func TestLoader_SkipsInvalidYAML(t *testing.T) {
	dir := setupTestCatalog(t)
	os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("id: [unterminated"), 0o644)
	os.WriteFile(filepath.Join(dir, "no-id.yaml"), []byte("name: not an exam"), 0o644)

	loader, err := catalog.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if got := len(loader.AllExams()); got != 1 {
		t.Errorf("AllExams() = %d exams, want 1 (invalid files skipped)", got)
	}
}

func TestLoader_EmptyDir(t *testing.T) {
	loader, err := catalog.NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	if got := len(loader.AllExams()); got != 0 {
		t.Errorf("AllExams() = %d, want 0 for empty dir", got)
	}
}

func TestExam_Roadmap(t *testing.T) {
	dir := setupTestCatalog(t)

	loader, err := catalog.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	exam, _ := loader.GetExam("gate-cs")
	r := exam.Roadmap()

	if len(r.Subjects) != 3 {
		t.Fatalf("roadmap has %d subjects, want 3", len(r.Subjects))
	}
	// Order must follow the syllabus.
	if r.Subjects[0].Name != "Discrete Mathematics" || r.Subjects[2].Name != "Operating Systems" {
		t.Errorf("roadmap order = %q..%q", r.Subjects[0].Name, r.Subjects[2].Name)
	}
	if r.Subjects[1].Weightage != 30 {
		t.Errorf("subjects[1].Weightage = %v, want 30", r.Subjects[1].Weightage)
	}
	if len(r.Subjects[0].Topics) != 2 {
		t.Errorf("subjects[0] has %d topics, want 2", len(r.Subjects[0].Topics))
	}
}

func TestLearningPath(t *testing.T) {
	dir := setupTestCatalog(t)

	loader, err := catalog.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	exam, _ := loader.GetExam("gate-cs")
	path, err := catalog.LearningPath(exam)
	if err != nil {
		t.Fatalf("LearningPath() error = %v", err)
	}

	pos := make(map[string]int, len(path))
	for i, name := range path {
		pos[name] = i
	}
	// Every prerequisite edge must be respected.
	for _, e := range exam.Edges {
		if pos[e.From] >= pos[e.To] {
			t.Errorf("path violates edge %s -> %s: %v", e.From, e.To, path)
		}
	}
	if len(path) != 3 {
		t.Errorf("path covers %d subjects, want 3", len(path))
	}
}

func TestLearningPath_Cycle(t *testing.T) {
	exam := catalog.Exam{
		ID: "cyclic",
		Subjects: []catalog.ExamSubject{
			{Name: "A", Weightage: 50},
			{Name: "B", Weightage: 50},
		},
		Edges: []catalog.Edge{
			{From: "A", To: "B"},
			{From: "B", To: "A"},
		},
	}

	if _, err := catalog.LearningPath(exam); err == nil {
		t.Error("LearningPath() should fail on a cyclic concept map")
	}
}

func TestLearningPath_UnknownSubject(t *testing.T) {
	exam := catalog.Exam{
		ID:       "bad-edge",
		Subjects: []catalog.ExamSubject{{Name: "A", Weightage: 100}},
		Edges:    []catalog.Edge{{From: "A", To: "Ghost"}},
	}

	if _, err := catalog.LearningPath(exam); err == nil {
		t.Error("LearningPath() should fail on an edge to an unknown subject")
	}
}

func setupTestCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	examsDir := filepath.Join(dir, "exams")
	os.MkdirAll(examsDir, 0o755)

	os.WriteFile(filepath.Join(examsDir, "gate-cs.yaml"), []byte(`
id: gate-cs
name: "GATE Computer Science"
category: engineering
subjects:
  - name: "Discrete Mathematics"
    weightage: 15
    question_count: 10
    topics:
      - name: "Graph Theory"
        weightage: 8
      - name: "Logic"
        weightage: 7
  - name: "Algorithms"
    weightage: 30
    question_count: 20
    topics:
      - name: "Sorting"
        weightage: 12
  - name: "Operating Systems"
    weightage: 55
    question_count: 25
    topics: []
edges:
  - from: "Discrete Mathematics"
    to: "Algorithms"
  - from: "Algorithms"
    to: "Operating Systems"
`), 0o644)

	return dir
}
