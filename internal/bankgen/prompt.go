package bankgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/secprep/internal/llm"
)

const systemPrompt = `You write multiple-choice practice exam questions for IT and cybersecurity certification candidates.

Rules:
- Exactly one option is correct; the others are plausible but clearly wrong to an expert.
- "correct" is the 0-based index of the right option. Vary its position across questions.
- Do not use "all of the above" or "none of the above".
- Keep prompts self-contained and under 300 characters.
- The explanation says why the correct option is right in one or two sentences.
- "category" is a short lowercase tag such as "networking", "cryptography" or "access-control".`

func userPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d questions for a practice exam titled %q.\n", in.Count, in.Title)
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Each question has exactly %d options.\n", in.Options)
	switch in.Difficulty {
	case "", "mixed":
		b.WriteString("Mix easy, medium and hard questions.\n")
	default:
		fmt.Fprintf(&b, "All questions are %s.\n", in.Difficulty)
	}
	b.WriteString("Also write a one-sentence description of the exam.")
	return b.String()
}

func draftSchema(options int) *llm.Schema {
	return &llm.Schema{
		Name:        fmt.Sprintf("question-bank-draft-%d", options),
		Description: "A set of multiple-choice exam questions",
		Definition: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"description", "questions"},
			"properties": map[string]any{
				"description": map[string]any{"type": "string"},
				"questions": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type":                 "object",
						"additionalProperties": false,
						"required":             []string{"prompt", "options", "correct", "explanation", "category", "difficulty"},
						"properties": map[string]any{
							"prompt": map[string]any{"type": "string", "minLength": 1},
							"options": map[string]any{
								"type":     "array",
								"items":    map[string]any{"type": "string", "minLength": 1},
								"minItems": options,
								"maxItems": options,
							},
							"correct":     map[string]any{"type": "integer", "minimum": 0, "maximum": options - 1},
							"explanation": map[string]any{"type": "string"},
							"category":    map[string]any{"type": "string"},
							"difficulty":  map[string]any{"type": "string", "enum": []string{"easy", "medium", "hard"}},
						},
					},
				},
			},
		},
	}
}
