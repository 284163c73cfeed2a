package catalog

import "github.com/pyq-ai/pyq-assistant/internal/roadmap"

// Exam is a catalog entry loaded from YAML: the ordered syllabus breakdown
// plus the prerequisite edges of its concept map.
type Exam struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Category string        `yaml:"category"`
	Subjects []ExamSubject `yaml:"subjects"`
	Edges    []Edge        `yaml:"edges"`
}

// ExamSubject mirrors roadmap.Subject in YAML form, keeping catalog content
// decoupled from the wire types.
type ExamSubject struct {
	Name          string      `yaml:"name"`
	Weightage     float64     `yaml:"weightage"`
	QuestionCount int         `yaml:"question_count"`
	Topics        []ExamTopic `yaml:"topics"`
}

// ExamTopic is a named weightage slice within a subject.
type ExamTopic struct {
	Name      string  `yaml:"name"`
	Weightage float64 `yaml:"weightage"`
}

// Edge is a prerequisite relation in the concept map: From must be studied
// before To.
type Edge struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Roadmap converts the exam's syllabus into the engine's roadmap form,
// preserving subject order.
func (e Exam) Roadmap() roadmap.Roadmap {
	subjects := make([]roadmap.Subject, len(e.Subjects))
	for i, s := range e.Subjects {
		topics := make([]roadmap.Topic, len(s.Topics))
		for j, tp := range s.Topics {
			topics[j] = roadmap.Topic{Name: tp.Name, Weightage: tp.Weightage}
		}
		subjects[i] = roadmap.Subject{
			Name:          s.Name,
			Weightage:     s.Weightage,
			QuestionCount: s.QuestionCount,
			Topics:        topics,
		}
	}
	return roadmap.Roadmap{Subjects: subjects}
}
