package ai

import (
	"context"
	"errors"
	"testing"
)

const validRoadmapJSON = `{"subjects":[
	{"name":"Algorithms","weightage":20},
	{"name":"Operating Systems","weightage":15}
]}`

func TestGeneratorGenerate(t *testing.T) {
	mock := NewMockProvider(validRoadmapJSON)
	g := NewGenerator(mock, "test-model")

	r, err := g.Generate(context.Background(), "GATE CS")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(r.Subjects) != 2 {
		t.Fatalf("got %d subjects, want 2", len(r.Subjects))
	}
	if r.Subjects[0].Name != "Algorithms" {
		t.Errorf("first subject = %q, want Algorithms", r.Subjects[0].Name)
	}
	if mock.LastRequest == nil {
		t.Fatal("provider was not called")
	}
	if mock.LastRequest.Model != "test-model" {
		t.Errorf("model = %q, want test-model", mock.LastRequest.Model)
	}
	if len(mock.LastRequest.Messages) != 2 {
		t.Fatalf("got %d messages, want system + user", len(mock.LastRequest.Messages))
	}
}

func TestGeneratorStripsCodeFence(t *testing.T) {
	mock := NewMockProvider("```json\n" + validRoadmapJSON + "\n```")
	g := NewGenerator(mock, "")

	r, err := g.Generate(context.Background(), "GATE CS")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(r.Subjects) != 2 {
		t.Errorf("got %d subjects, want 2", len(r.Subjects))
	}
}

func TestGeneratorEmptyExamName(t *testing.T) {
	g := NewGenerator(NewMockProvider(validRoadmapJSON), "")
	if _, err := g.Generate(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank exam name")
	}
}

func TestGeneratorProviderError(t *testing.T) {
	mock := &MockProvider{Err: errors.New("upstream down")}
	g := NewGenerator(mock, "")
	if _, err := g.Generate(context.Background(), "GATE CS"); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestGeneratorRejectsBadPayload(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"prose instead of json", "Sure! Here is your roadmap."},
		{"missing weightage", `{"subjects":[{"name":"Algorithms"}]}`},
		{"no subjects", `{"subjects":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(NewMockProvider(tt.response), "")
			if _, err := g.Generate(context.Background(), "GATE CS"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{}", "{}"},
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"  {}  ", "{}"},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
