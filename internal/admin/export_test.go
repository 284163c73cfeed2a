package admin_test

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/pyq-ai/pyq-assistant/internal/admin"
	"github.com/pyq-ai/pyq-assistant/internal/pyq"
)

func exportQuestions() []pyq.Question {
	return []pyq.Question{
		{ExamID: "gate-cs", Subject: "Algorithms", Topic: "Sorting", Year: 2021,
			Body: "Older question", Marks: 1},
		{ExamID: "gate-cs", Subject: "Algorithms", Topic: "Graphs", Year: 2023,
			Body: "Newer question", Options: []string{"A", "B"}, Answer: "A", Marks: 2},
		{ExamID: "gate-cs", Subject: "Operating Systems", Year: 2022,
			Body: "OS question", Marks: 2},
	}
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := admin.ExportXLSX(&buf, exportQuestions()); err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reading workbook back: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("sheets = %v, want 2 (one per subject)", sheets)
	}
	if sheets[0] != "Algorithms" {
		t.Errorf("first sheet = %q, want Algorithms", sheets[0])
	}

	rows, err := f.GetRows("Algorithms")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Algorithms rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Exam" || rows[0][4] != "Question" {
		t.Errorf("header row = %v", rows[0])
	}
	// Newest year first.
	if rows[1][4] != "Newer question" {
		t.Errorf("rows[1] question = %q, want the 2023 question first", rows[1][4])
	}
	if rows[1][5] != "A | B" {
		t.Errorf("rows[1] options = %q, want 'A | B'", rows[1][5])
	}
}

func TestExportXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := admin.ExportXLSX(&buf, nil); err == nil {
		t.Fatal("ExportXLSX() should fail with nothing to export")
	}
}

func TestExportXLSX_AwkwardSubjectNames(t *testing.T) {
	questions := []pyq.Question{
		{ExamID: "e", Subject: "Data Structures / Algorithms: Advanced [Hard]*?", Year: 2020,
			Body: "q", Marks: 1},
	}

	var buf bytes.Buffer
	if err := admin.ExportXLSX(&buf, questions); err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reading workbook back: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 {
		t.Fatalf("sheets = %v, want 1", sheets)
	}
	if len(sheets[0]) > 31 {
		t.Errorf("sheet name %q exceeds 31 characters", sheets[0])
	}
}

func TestExportXLSX_LongSubjectNames(t *testing.T) {
	// Both subjects share the same first 31 characters, and the third uses
	// multi-byte runes well past the name cap.
	questions := []pyq.Question{
		{ExamID: "e", Subject: "Computer Organization and Architecture (Volume One)", Year: 2020,
			Body: "q1", Marks: 1},
		{ExamID: "e", Subject: "Computer Organization and Architecture (Volume Two)", Year: 2020,
			Body: "q2", Marks: 1},
		{ExamID: "e", Subject: strings.Repeat("計", 40), Year: 2020,
			Body: "q3", Marks: 1},
	}

	var buf bytes.Buffer
	if err := admin.ExportXLSX(&buf, questions); err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reading workbook back: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 {
		t.Fatalf("sheets = %v, want 3 (one per subject)", sheets)
	}
	seen := make(map[string]bool)
	for _, name := range sheets {
		if seen[name] {
			t.Fatalf("duplicate sheet name %q", name)
		}
		seen[name] = true
		if !utf8.ValidString(name) {
			t.Errorf("sheet name %q is not valid UTF-8", name)
		}
		if n := utf8.RuneCountInString(name); n > 31 {
			t.Errorf("sheet name %q is %d runes, want <= 31", name, n)
		}
	}
	if !seen["Computer Organization and Archi"] {
		t.Errorf("sheets = %v, want truncated first subject present", sheets)
	}
	if !seen["Computer Organization and Arc 2"] {
		t.Errorf("sheets = %v, want numbered name for the colliding subject", sheets)
	}
}
