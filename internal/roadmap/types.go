// Package roadmap implements the exam-roadmap progress engine: a bidirectional
// mapping between a continuous progress position on a 0-100 axis and a discrete
// set of completed subjects, using each subject's weightage as a bucket width
// traversed in roadmap order.
package roadmap

import "sort"

// Topic is a named slice of a subject's weightage. Topics are descriptive only;
// coverage is computed at subject granularity.
type Topic struct {
	Name      string  `json:"name"`
	Weightage float64 `json:"weightage"`
}

// Subject is one ordered entry of a roadmap. Weightage is the subject's share
// of total exam marks and doubles as its bucket width on the progress axis.
type Subject struct {
	Name          string  `json:"name"`
	Weightage     float64 `json:"weightage"`
	QuestionCount int     `json:"question_count"`
	Topics        []Topic `json:"topics"`
}

// Roadmap is an ordered syllabus breakdown for an exam. Subject order is
// semantically meaningful: it defines the cumulative traversal order used for
// coverage computation. A roadmap is replaced wholesale on exam change and
// never partially mutated.
type Roadmap struct {
	Subjects []Subject `json:"subjects"`
}

// Milestone marks the cumulative-weightage boundary where a subject's bucket
// ends. Percentage is capped at 100 for display; the internal cumulative sum
// used for coverage is not capped.
type Milestone struct {
	Percentage   float64 `json:"percentage"`
	SubjectName  string  `json:"subject_name"`
	SubjectIndex int     `json:"subject_index"`
}

// Selection is the set of subject indices the user has marked complete.
type Selection map[int]struct{}

// NewSelection builds a Selection from the given indices.
func NewSelection(indices ...int) Selection {
	s := make(Selection, len(indices))
	for _, i := range indices {
		s[i] = struct{}{}
	}
	return s
}

// Contains reports whether index i is selected.
func (s Selection) Contains(i int) bool {
	_, ok := s[i]
	return ok
}

// Indices returns the selected indices in ascending order.
func (s Selection) Indices() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
