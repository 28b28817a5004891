package bank

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// SupportedFormat is the newest bank format this build understands.
// Banks declaring a higher "requires" version are rejected.
const SupportedFormat = "v1.1.0"

// Validate checks the semantic rules the schema cannot express:
// unique question IDs, option counts, the correct index, and versions.
func Validate(b *Bank) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(b.Slug) == "" {
		add("slug is empty")
	}
	if !semver.IsValid(b.Version) {
		add("version %q is not a semantic version (want e.g. v1.0.0)", b.Version)
	}
	if b.Requires != "" {
		switch {
		case !semver.IsValid(b.Requires):
			add("requires %q is not a semantic version", b.Requires)
		case semver.Compare(b.Requires, SupportedFormat) > 0:
			add("requires bank format %s, this build supports up to %s", b.Requires, SupportedFormat)
		}
	}
	if b.TimeLimitSecs < 0 {
		add("time_limit_secs must not be negative")
	}
	if len(b.Questions) == 0 {
		add("no questions")
	}

	seen := make(map[int]bool, len(b.Questions))
	for i, q := range b.Questions {
		if seen[q.ID] {
			add("question %d: duplicate id %d", i+1, q.ID)
		}
		seen[q.ID] = true

		if strings.TrimSpace(q.Prompt) == "" {
			add("question %d: empty prompt", q.ID)
		}
		if len(q.Options) < 2 {
			add("question %d: needs at least 2 options, has %d", q.ID, len(q.Options))
		}
		if !q.ValidOption(q.Correct) {
			add("question %d: correct index %d out of range [0, %d)", q.ID, q.Correct, len(q.Options))
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				add("question %d: option %d is empty", q.ID, j+1)
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Slug: b.Slug, Problems: problems}
	}
	return nil
}

// Newer reports whether a has a higher version than b.
func Newer(a, b *Bank) bool {
	return semver.Compare(a.Version, b.Version) > 0
}
