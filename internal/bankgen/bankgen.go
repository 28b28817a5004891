// Package bankgen drafts question banks with an LLM. Drafts are ordinary
// banks: they pass the same semantic checks as hand-written bank
// files and are meant to be reviewed before use.
package bankgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/secprep/internal/bank"
	"github.com/abhisek/secprep/internal/llm"
	"github.com/abhisek/secprep/internal/validate"
)

// Purpose labels drafting calls in the LLM event log.
const Purpose = "bank-draft"

// Input describes the bank to draft.
type Input struct {
	Slug       string `json:"slug" validate:"required,slug"`
	Title      string `json:"title" validate:"required"`
	Topic      string `json:"topic" validate:"required"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard mixed"`
	Count      int    `json:"count" validate:"gte=1,lte=50"`

	// Options per question. Zero means 4.
	Options int `json:"options" validate:"omitempty,gte=2,lte=6"`

	// TimeLimitSecs is copied into the bank. Zero leaves it unset.
	TimeLimitSecs int `json:"time_limit_secs" validate:"gte=0"`
}

// Drafter turns an Input into a validated bank.
type Drafter struct {
	provider llm.Provider
}

func New(p llm.Provider) *Drafter {
	return &Drafter{provider: p}
}

// draft is the shape the model is asked to return.
type draft struct {
	Description string          `json:"description"`
	Questions   []draftQuestion `json:"questions"`
}

type draftQuestion struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
}

// Draft asks the provider for in.Count questions and assembles a bank at
// version v0.1.0. Question IDs are assigned 1..n in the returned order.
func (d *Drafter) Draft(ctx context.Context, in Input) (*bank.Bank, error) {
	if in.Options == 0 {
		in.Options = 4
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("draft input: %w", err)
	}

	req := llm.Prompt(systemPrompt, userPrompt(in))
	req.Schema = draftSchema(in.Options)
	req.MaxTokens = 600 + 350*in.Count
	req.Temperature = 0.7

	resp, err := d.provider.Generate(llm.WithPurpose(ctx, Purpose), req)
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}

	var out draft
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	if len(out.Questions) != in.Count {
		return nil, fmt.Errorf("draft has %d questions, asked for %d", len(out.Questions), in.Count)
	}

	b := &bank.Bank{
		Slug:          in.Slug,
		Title:         in.Title,
		Description:   strings.TrimSpace(out.Description),
		Version:       "v0.1.0",
		TimeLimitSecs: in.TimeLimitSecs,
		Source:        "draft:" + d.provider.Model(),
	}
	for i, q := range out.Questions {
		b.Questions = append(b.Questions, bank.Question{
			ID:          i + 1,
			Prompt:      strings.TrimSpace(q.Prompt),
			Options:     trimAll(q.Options),
			Correct:     q.Correct,
			Explanation: strings.TrimSpace(q.Explanation),
			Category:    strings.TrimSpace(q.Category),
			Difficulty:  q.Difficulty,
		})
	}

	if err := bank.Validate(b); err != nil {
		return nil, fmt.Errorf("draft rejected: %w", err)
	}
	return b, nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
