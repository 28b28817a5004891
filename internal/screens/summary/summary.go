// Package summary shows the score of a finished exam, the per-question
// review and the form that sends the result on.
package summary

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/results"
	"github.com/abhisek/secprep/internal/router"
	"github.com/abhisek/secprep/internal/screen"
	"github.com/abhisek/secprep/internal/screens"
	"github.com/abhisek/secprep/internal/ui/components"
	"github.com/abhisek/secprep/internal/ui/layout"
)

// submitTimeout bounds one delivery attempt, email receipt included.
const submitTimeout = 30 * time.Second

type focus int

const (
	focusName focus = iota
	focusEmail
	focusSubmit
	focusReview
)

type submitDoneMsg struct {
	Receipt *exam.Receipt
	Err     error
}

// SummaryScreen displays the result of a completed session.
type SummaryScreen struct {
	env       *screens.Env
	session   *exam.Session
	sessionID string
	summary   *exam.Summary
	retake    func() screen.Screen

	name   components.TextInput
	email  components.TextInput
	submit components.Button
	focus  focus

	submitting bool
	submitted  bool
	message    string
	failed     bool

	selected int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates the summary for a completed session. retake, when non-nil,
// returns the screen that runs the next attempt.
func New(env *screens.Env, sess *exam.Session, sessionID string, retake func() screen.Screen) *SummaryScreen {
	return &SummaryScreen{
		env:       env,
		session:   sess,
		sessionID: sessionID,
		summary:   sess.Summary(),
		retake:    retake,
		name:      components.NewTextInput("Name", "Jane Doe", false, 80),
		email:     components.NewTextInput("Email", "jane@example.com", false, 120),
		submit:    components.NewButton("Submit result"),
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return s.setFocus(focusName)
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Next field"}}
	switch s.focus {
	case focusSubmit:
		label := "Submit"
		if s.failed {
			label = "Retry"
		}
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: label})
	case focusReview:
		hints = append(hints, layout.KeyHint{Key: "↑↓", Description: "Review"})
	default:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Next"})
	}
	if s.focus >= focusSubmit && s.retake != nil {
		hints = append(hints, layout.KeyHint{Key: "r", Description: "Retake"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Home"})
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case submitDoneMsg:
		return s.handleSubmitDone(msg)
	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s.forward(msg)
}

func (s *SummaryScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, router.PopToRoot(s.env.HomeScreen())
	case "tab":
		return s, s.setFocus(s.next(1))
	case "shift+tab":
		return s, s.setFocus(s.next(-1))
	}

	switch s.focus {
	case focusName, focusEmail:
		if msg.String() == "enter" {
			return s, s.setFocus(s.next(1))
		}
		return s.forward(msg)

	case focusSubmit:
		switch msg.String() {
		case "enter":
			return s, s.send()
		case "r":
			return s, s.retakeCmd()
		}

	case focusReview:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.summary.Items)-1 {
				s.selected++
			}
		case "r":
			return s, s.retakeCmd()
		}
	}
	return s, nil
}

// forward passes input to the focused text field.
func (s *SummaryScreen) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch s.focus {
	case focusName:
		s.name, cmd = s.name.Update(msg)
	case focusEmail:
		s.email, cmd = s.email.Update(msg)
	}
	return s, cmd
}

// next returns the focus delta steps away. The form fields are skipped
// once the result has been delivered or while it is being sent.
func (s *SummaryScreen) next(delta int) focus {
	order := []focus{focusName, focusEmail, focusSubmit, focusReview}
	if s.submitted || s.submitting {
		order = []focus{focusReview}
	}
	pos := 0
	for i, f := range order {
		if f == s.focus {
			pos = i
		}
	}
	return order[(pos+delta+len(order))%len(order)]
}

func (s *SummaryScreen) setFocus(f focus) tea.Cmd {
	s.focus = f
	s.name.Blur()
	s.email.Blur()
	s.submit.Focused = f == focusSubmit
	switch f {
	case focusName:
		return s.name.Focus()
	case focusEmail:
		return s.email.Focus()
	}
	return nil
}

// send delivers the result in the background. The session is read-only
// by now, so the command may run while the UI keeps rendering.
func (s *SummaryScreen) send() tea.Cmd {
	if s.submitting || s.submitted {
		return nil
	}
	ok := true
	if strings.TrimSpace(s.name.Value()) == "" {
		s.name.Err = "required"
		ok = false
	}
	if strings.TrimSpace(s.email.Value()) == "" {
		s.email.Err = "required"
		ok = false
	}
	if !ok {
		return nil
	}

	s.submitting = true
	s.message = ""
	sess, reporter, id := s.session, s.env.Reporter, s.sessionID
	name, email := s.name.Value(), s.email.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(results.WithSession(context.Background(), id), submitTimeout)
		defer cancel()
		receipt, err := sess.SubmitResult(ctx, reporter, name, email)
		return submitDoneMsg{Receipt: receipt, Err: err}
	}
}

func (s *SummaryScreen) handleSubmitDone(msg submitDoneMsg) (screen.Screen, tea.Cmd) {
	s.submitting = false
	if msg.Err != nil {
		s.failed = true
		s.message = msg.Err.Error()
		if errors.Is(msg.Err, exam.ErrSubmissionFailed) {
			s.message += " Press enter to retry."
		}
		return s, s.setFocus(focusSubmit)
	}

	s.failed = false
	s.submitted = true
	s.message = "Result submitted."
	if msg.Receipt != nil && msg.Receipt.Message != "" {
		s.message = msg.Receipt.Message
	}
	return s, s.setFocus(focusReview)
}

func (s *SummaryScreen) retakeCmd() tea.Cmd {
	if s.retake == nil || s.submitting {
		return nil
	}
	return router.Replace(s.retake())
}

// Submitted reports whether the result was delivered.
func (s *SummaryScreen) Submitted() bool {
	return s.submitted
}
