package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pyq-ai/pyq-assistant/internal/roadmap"
)

const generatorSystemPrompt = `You are an exam preparation planner. Given an exam name, produce a
study roadmap as a JSON object with a "subjects" array. Each subject has
"name" (string), "weightage" (number, percent of the exam), and optionally
"question_count" (integer) and "topics" (array of objects with "name" and
"weightage"). Subject weightages should sum to roughly 100. Respond with JSON only, no prose.`

// Generator produces exam roadmaps from a completion provider and validates
// the model output before returning it.
type Generator struct {
	provider Provider
	model    string
}

// NewGenerator creates a Generator backed by the given provider. The model
// may be empty to use the provider default.
func NewGenerator(provider Provider, model string) *Generator {
	return &Generator{provider: provider, model: model}
}

// Generate asks the provider for a roadmap for the named exam. The raw
// completion is validated against the roadmap payload schema, so a malformed
// model response returns an error rather than a broken roadmap.
func (g *Generator) Generate(ctx context.Context, examName string) (roadmap.Roadmap, error) {
	examName = strings.TrimSpace(examName)
	if examName == "" {
		return roadmap.Roadmap{}, fmt.Errorf("exam name is required")
	}

	resp, err := g.provider.Complete(ctx, CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: generatorSystemPrompt},
			{Role: "user", Content: "Generate a study roadmap for the exam: " + examName},
		},
		Model:     g.model,
		MaxTokens: 2048,
	})
	if err != nil {
		return roadmap.Roadmap{}, fmt.Errorf("complete roadmap prompt: %w", err)
	}

	payload := stripCodeFence(resp.Content)
	r, err := roadmap.Decode([]byte(payload))
	if err != nil {
		return roadmap.Roadmap{}, fmt.Errorf("decode generated roadmap: %w", err)
	}
	if len(r.Subjects) == 0 {
		return roadmap.Roadmap{}, fmt.Errorf("generated roadmap has no subjects")
	}
	return r, nil
}

// stripCodeFence removes a surrounding markdown code fence, which models
// often add despite being told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
