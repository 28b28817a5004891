package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/ui/components"
	"github.com/abhisek/secprep/internal/ui/layout"
	"github.com/abhisek/secprep/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(s.renderQuestion(cw))
	b.WriteString("\n")

	switch s.mode {
	case modeJump:
		b.WriteString(components.Card(s.jump.View(), cw))
	case modeConfirmSubmit:
		b.WriteString(components.Card(s.submitPrompt(), cw))
	case modeConfirmRestart:
		b.WriteString(components.Card(
			theme.Body.Render("Restart? All answers are discarded and the clock resets.  (y/n)"), cw))
	default:
		b.WriteString(s.renderProgress(cw, height))
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(1, (width-cw)/2).
		Render(b.String())
}

func (s *SessionScreen) renderQuestion(cw int) string {
	q := s.session.CurrentQuestion()

	head := theme.Subtitle.Render(fmt.Sprintf("Question %d of %d",
		s.session.CurrentIndex()+1, s.session.QuestionCount()))
	if q.Category != "" {
		head += theme.Hint.Render("  #" + q.Category)
	}

	prompt := theme.Body.Bold(true).Width(cw - 4).Render(q.Prompt)

	return components.Card(head+"\n\n"+prompt+"\n\n"+s.options.View(cw-4), cw)
}

func (s *SessionScreen) renderProgress(cw, height int) string {
	bar := components.NewProgressBar(
		fmt.Sprintf("Answered %d/%d", s.session.AnsweredCount(), s.session.QuestionCount()),
		s.session.CompletionPercentage(), cw,
	).View()

	if layout.IsCompactHeight(height) {
		return bar
	}

	answered := make([]bool, s.session.QuestionCount())
	for i := range answered {
		answered[i] = s.session.Answer(i) != exam.Unanswered
	}
	palette := components.Palette{
		Answered: answered,
		Current:  s.session.CurrentIndex(),
		PerRow:   max(cw/4, 1),
	}.View()

	return bar + "\n\n" + palette
}

func (s *SessionScreen) submitPrompt() string {
	open := s.session.QuestionCount() - s.session.AnsweredCount()
	msg := "Submit your answers?"
	if open > 0 {
		msg = fmt.Sprintf("Submit with %d unanswered question(s)?", open)
	}
	return theme.Body.Render(msg+"  (y/n)") + "\n" +
		theme.Hint.Render("You cannot change answers after submitting.")
}
