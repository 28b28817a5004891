package bank

// Question is a single multiple-choice question in a bank.
type Question struct {
	// ID is unique within the bank.
	ID int `json:"id" yaml:"id"`

	// Prompt is the question text shown to the candidate.
	Prompt string `json:"prompt" yaml:"prompt"`

	// Options are the answer choices in display order (at least two).
	Options []string `json:"options" yaml:"options"`

	// Correct is the 0-based index of the correct option.
	Correct int `json:"correct" yaml:"correct"`

	// Explanation is shown during review. Optional.
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`

	// Category and Difficulty are free-form tags. Optional.
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
}

// IsCorrect reports whether option is the correct choice.
func (q Question) IsCorrect(option int) bool {
	return option == q.Correct
}

// ValidOption reports whether option indexes into Options.
func (q Question) ValidOption(option int) bool {
	return option >= 0 && option < len(q.Options)
}

// Bank is an ordered, immutable set of questions for one test type.
type Bank struct {
	// Slug identifies the bank and is reported as the result's test type,
	// e.g. "cybersecurity".
	Slug string `json:"slug" yaml:"slug"`

	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Version is the bank's own semantic version ("v1.2.0").
	Version string `json:"version" yaml:"version"`

	// Requires is the minimum bank format version this file needs. Optional.
	Requires string `json:"requires,omitempty" yaml:"requires,omitempty"`

	// TimeLimitSecs overrides the default countdown budget. 0 means unset.
	TimeLimitSecs int `json:"time_limit_secs,omitempty" yaml:"time_limit_secs,omitempty"`

	Questions []Question `json:"questions" yaml:"questions"`

	// Source is where the bank was loaded from ("builtin" or a file path).
	Source string `json:"-" yaml:"-"`
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	return len(b.Questions)
}

// Question returns the question at index i.
func (b *Bank) Question(i int) Question {
	return b.Questions[i]
}

// Categories returns the distinct category tags in question order.
func (b *Bank) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, q := range b.Questions {
		if q.Category == "" || seen[q.Category] {
			continue
		}
		seen[q.Category] = true
		out = append(out, q.Category)
	}
	return out
}
