// Package admin provides administrative operations over the question bank,
// including workbook exports for offline review.
package admin

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pyq-ai/pyq-assistant/internal/pyq"
)

var exportHeader = []string{"Exam", "Subject", "Topic", "Year", "Question", "Options", "Answer", "Marks"}

// ExportXLSX writes the given questions to w as an Excel workbook with one
// sheet per subject. Sheet order and row order are deterministic: subjects
// alphabetically, questions newest year first.
func ExportXLSX(w io.Writer, questions []pyq.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("nothing to export")
	}

	bySubject := make(map[string][]pyq.Question)
	for _, q := range questions {
		bySubject[q.Subject] = append(bySubject[q.Subject], q)
	}
	subjects := make([]string, 0, len(bySubject))
	for s := range bySubject {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	used := make(map[string]bool)
	for i, subject := range subjects {
		sheet := sheetName(subject, used)
		if i == 0 {
			// Rename the default sheet instead of leaving it empty.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, bySubject[subject]); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, questions []pyq.Question) error {
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Year != questions[j].Year {
			return questions[i].Year > questions[j].Year
		}
		return questions[i].Body < questions[j].Body
	})

	for col, h := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set header: %w", err)
		}
	}

	for row, q := range questions {
		values := []any{
			q.ExamID,
			q.Subject,
			q.Topic,
			q.Year,
			q.Body,
			strings.Join(q.Options, " | "),
			q.Answer,
			q.Marks,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("set cell: %w", err)
			}
		}
	}

	// Question bodies need room; the rest stay narrow.
	if err := f.SetColWidth(sheet, "E", "E", 60); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return nil
}

var sheetReplacer = strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "-", "*", "-", "[", "(", "]", ")")

// sheetName makes a subject safe for use as an Excel sheet name: the format
// caps names at 31 characters and forbids a handful of punctuation marks.
// Subjects that sanitize to the same name get a numeric suffix so every
// sheet stays distinct within the workbook.
func sheetName(subject string, used map[string]bool) string {
	name := truncateRunes(sheetReplacer.Replace(subject), 31)
	if name == "" {
		name = "Sheet"
	}

	base := name
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf(" %d", n)
		name = truncateRunes(base, 31-len(suffix)) + suffix
	}
	used[name] = true
	return name
}

// truncateRunes caps s at n characters without splitting a multi-byte rune.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
