package roadmap

// The functions in this file are pure: derived values are recomputed on demand
// from the canonical state (subjects, position, selection) and never cached.

// ClampPosition clamps a raw position to the [0,100] progress axis. All
// position inputs pass through here before any computation.
func ClampPosition(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Milestones computes the cumulative-weightage boundary for each subject, in
// roadmap order. Percentages are non-decreasing and capped at 100 for display.
// An empty subject slice yields an empty result. Zero or negative weightages
// pass through uncritically and produce zero-width buckets.
func Milestones(subjects []Subject) []Milestone {
	out := make([]Milestone, 0, len(subjects))
	c := 0.0
	for i, s := range subjects {
		c += s.Weightage
		pct := c
		if pct > 100 {
			pct = 100
		}
		out = append(out, Milestone{
			Percentage:   pct,
			SubjectName:  s.Name,
			SubjectIndex: i,
		})
	}
	return out
}

// CoveredAt returns the maximal prefix of subjects whose cumulative weightage
// through and including each subject does not exceed position. Coverage is
// always a contiguous prefix: the cumulative sum is monotonic, so no subject
// can be covered while an earlier one is not. The cumulative sum is not capped
// at 100, so subjects past the 100 boundary are unreachable by a clamped
// position.
func CoveredAt(subjects []Subject, position float64) []Subject {
	c := 0.0
	n := 0
	for _, s := range subjects {
		c += s.Weightage
		if c > position {
			break
		}
		n++
	}
	return subjects[:n]
}

// NextSubjectIndex returns the index of the first not-yet-covered subject at
// position, or len(subjects) when everything is covered.
func NextSubjectIndex(subjects []Subject, position float64) int {
	return len(CoveredAt(subjects, position))
}

// SelectionFromPosition maps a continuous position to the discrete selection
// it implies: the contiguous prefix of subjects whose full bucket lies at or
// before position. Partial coverage of a bucket does not select the subject;
// buckets are all-or-nothing.
func SelectionFromPosition(subjects []Subject, position float64) Selection {
	n := NextSubjectIndex(subjects, position)
	sel := make(Selection, n)
	for i := 0; i < n; i++ {
		sel[i] = struct{}{}
	}
	return sel
}

// PositionFromSelection maps a selection back to a position: the sum of the
// selected subjects' weightages, capped at 100. The selection may be an
// arbitrary subset; a non-contiguous manual selection still contributes every
// selected bucket. This is deliberately not a strict inverse of
// SelectionFromPosition for non-contiguous selections.
func PositionFromSelection(subjects []Subject, selected Selection) float64 {
	total := 0.0
	for i := range selected {
		if i < 0 || i >= len(subjects) {
			continue
		}
		total += subjects[i].Weightage
	}
	if total > 100 {
		return 100
	}
	return total
}

// ToggleSubject returns a copy of selected with index i added if absent or
// removed if present.
func ToggleSubject(selected Selection, i int) Selection {
	out := make(Selection, len(selected)+1)
	for k := range selected {
		out[k] = struct{}{}
	}
	if _, ok := out[i]; ok {
		delete(out, i)
	} else {
		out[i] = struct{}{}
	}
	return out
}

// NextMilestone finds the first milestone whose percentage strictly exceeds
// position and returns it together with the remaining gap. ok is false when
// position has passed the last milestone.
func NextMilestone(subjects []Subject, position float64) (m Milestone, gap float64, ok bool) {
	for _, ms := range Milestones(subjects) {
		if ms.Percentage > position {
			return ms, ms.Percentage - position, true
		}
	}
	return Milestone{}, 0, false
}
