package summary

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/ui/components"
	"github.com/abhisek/secprep/internal/ui/theme"
)

func (s *SummaryScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	sum := s.summary

	var b strings.Builder

	headline := "Exam submitted"
	if sum.Reason == exam.ReasonExpired {
		headline = "Time is up"
	}
	b.WriteString(theme.Title.Render(headline) + "\n\n")

	pct := 0
	if sum.Total > 0 {
		pct = int(math.Round(100 * float64(sum.Score) / float64(sum.Total)))
	}
	b.WriteString(theme.Body.Render(fmt.Sprintf(
		"Score %d/%d (%d%%)    Answered %d/%d    Time %s",
		sum.Score, sum.Total, pct, sum.Answered, sum.Total, formatDuration(sum.TimeTaken),
	)))
	b.WriteString("\n")

	var cats []string
	for _, c := range sum.ByCategory() {
		cats = append(cats, fmt.Sprintf("%s %d/%d", c.Category, c.Correct, c.Total))
	}
	b.WriteString(theme.Hint.Render(strings.Join(cats, " · ")) + "\n\n")

	b.WriteString(components.Card(s.renderForm(), cw) + "\n")
	b.WriteString(components.Card(s.renderReview(cw-4, max(height-22, 4)), cw))

	return lipgloss.NewStyle().
		Width(width).
		Padding(1, (width-cw)/2).
		Render(b.String())
}

func (s *SummaryScreen) renderForm() string {
	var b strings.Builder
	b.WriteString(s.name.View() + "\n")
	b.WriteString(s.email.View() + "\n\n")

	switch {
	case s.submitting:
		b.WriteString(theme.Hint.Render("Submitting..."))
	case s.submitted:
		b.WriteString(theme.Correct.Render("✓ " + s.message))
	default:
		b.WriteString(s.submit.View())
		if s.message != "" {
			b.WriteString("\n" + theme.ErrorText.Render(s.message))
		}
	}
	return b.String()
}

// renderReview lists every question with its outcome, keeping the
// selected one in view and expanding it.
func (s *SummaryScreen) renderReview(width, rows int) string {
	items := s.summary.Items
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}
	end := min(start+rows, len(items))

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Review") + "\n")
	for i := start; i < end; i++ {
		it := items[i]
		mark := theme.Correct.Render("✓")
		switch {
		case !it.Answered():
			mark = theme.Hint.Render("–")
		case !it.Correct():
			mark = theme.Incorrect.Render("✗")
		}
		line := fmt.Sprintf("%s %2d. %s", mark, it.Index+1, truncate(it.Question.Prompt, width-8))
		if s.focus == focusReview && i == s.selected {
			line = theme.Selected.Render("▸") + line
		} else {
			line = " " + line
		}
		b.WriteString(line + "\n")
	}

	if s.focus == focusReview && s.selected < len(items) {
		b.WriteString("\n" + s.renderDetail(items[s.selected], width))
	}
	return b.String()
}

func (s *SummaryScreen) renderDetail(it exam.ReviewItem, width int) string {
	opts := components.NewOptionList(it.Question.Options, it.Answer)
	opts.Correct = it.Question.Correct
	opts.Reveal = true

	out := theme.Body.Width(width).Render(it.Question.Prompt) + "\n" + opts.View(width)
	if it.Question.Explanation != "" {
		out += theme.Hint.Width(width).Render(it.Question.Explanation)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatDuration(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
