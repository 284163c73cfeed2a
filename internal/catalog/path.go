package catalog

import (
	"fmt"
	"sort"
)

// LearningPath orders the exam's subjects so every prerequisite comes before
// its dependents (Kahn's algorithm). Subjects not mentioned by any edge keep
// their syllabus position as a tiebreak, so the path is deterministic. A cycle
// in the concept map is a content error.
func LearningPath(e Exam) ([]string, error) {
	order := make(map[string]int, len(e.Subjects))
	for i, s := range e.Subjects {
		order[s.Name] = i
	}

	indegree := make(map[string]int, len(e.Subjects))
	next := make(map[string][]string)
	for name := range order {
		indegree[name] = 0
	}
	for _, edge := range e.Edges {
		if _, ok := order[edge.From]; !ok {
			return nil, fmt.Errorf("edge references unknown subject %q", edge.From)
		}
		if _, ok := order[edge.To]; !ok {
			return nil, fmt.Errorf("edge references unknown subject %q", edge.To)
		}
		next[edge.From] = append(next[edge.From], edge.To)
		indegree[edge.To]++
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}

	path := make([]string, 0, len(e.Subjects))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return order[ready[i]] < order[ready[j]] })
		name := ready[0]
		ready = ready[1:]
		path = append(path, name)

		for _, dep := range next[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(path) != len(e.Subjects) {
		return nil, fmt.Errorf("concept map for exam %q contains a cycle", e.ID)
	}
	return path, nil
}
