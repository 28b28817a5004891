package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/results"
	"github.com/abhisek/secprep/internal/router"
	"github.com/abhisek/secprep/internal/screen"
	"github.com/abhisek/secprep/internal/screens"
	"github.com/abhisek/secprep/internal/screens/screenstest"
)

// completed returns a submitted session scoring 2/3: answers [1, 0, unanswered].
func completed(t *testing.T) *exam.Session {
	t.Helper()
	sess, err := exam.New(screenstest.Bank(), 600)
	if err != nil {
		t.Fatal(err)
	}
	sess.SelectAnswer(1)
	sess.Next()
	sess.SelectAnswer(0)
	sess.Tick()
	sess.Submit()
	return sess
}

func newScreen(t *testing.T, env *screens.Env, retake func() screen.Screen) *SummaryScreen {
	t.Helper()
	s := New(env, completed(t), "sess-1", retake)
	s.Init()
	return s
}

func fill(s *SummaryScreen, name, email string) {
	s.name.SetValue(name)
	s.email.SetValue(email)
}

// submitNow focuses the button, presses enter and feeds the result back.
func submitNow(t *testing.T, s *SummaryScreen) {
	t.Helper()
	s.setFocus(focusSubmit)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a submit command")
	}
	if !s.submitting {
		t.Error("expected submitting state while the command runs")
	}
	s.Update(cmd())
}

func TestSummaryScreen_Title(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	s := newScreen(t, env, nil)
	if s.Title() != "Results" {
		t.Errorf("Title = %q, want %q", s.Title(), "Results")
	}
}

func TestSummaryScreen_ShowsScore(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	s := newScreen(t, env, nil)

	view := s.View(100, 40)
	for _, want := range []string{"Exam submitted", "Score 2/3 (67%)", "Answered 2/3", "Time 0:01"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_SubmitsPayload(t *testing.T) {
	env, _, rep := screenstest.Env(t)
	s := newScreen(t, env, nil)
	fill(s, "  Ada Lovelace ", "ada@example.com")

	submitNow(t, s)

	if !s.Submitted() {
		t.Fatalf("expected submitted, message %q", s.message)
	}
	if len(rep.Payloads) != 1 {
		t.Fatalf("payloads = %d, want 1", len(rep.Payloads))
	}
	want := exam.Payload{
		Email: "ada@example.com", Name: "Ada Lovelace",
		Score: 2, TotalQuestions: 3, TimeTaken: 1, TestType: "cybersecurity",
	}
	if rep.Payloads[0] != want {
		t.Errorf("payload = %+v, want %+v", rep.Payloads[0], want)
	}
	if s.message != "recorded" {
		t.Errorf("message = %q, want receipt message", s.message)
	}
	if s.focus != focusReview {
		t.Error("expected focus to move to the review after success")
	}
}

func TestSummaryScreen_SessionIDReachesReporter(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	var got string
	env.Reporter = exam.ReporterFunc(func(ctx context.Context, _ exam.Payload) (*exam.Receipt, error) {
		got = results.SessionFrom(ctx)
		return &exam.Receipt{Success: true}, nil
	})
	s := newScreen(t, env, nil)
	fill(s, "Ada", "ada@example.com")

	submitNow(t, s)

	if got != "sess-1" {
		t.Errorf("session in context = %q, want sess-1", got)
	}
}

func TestSummaryScreen_RequiresNameAndEmail(t *testing.T) {
	env, _, rep := screenstest.Env(t)
	s := newScreen(t, env, nil)
	fill(s, "", "  ")

	s.setFocus(focusSubmit)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if cmd != nil {
		t.Error("expected no submission with empty fields")
	}
	if s.name.Err == "" || s.email.Err == "" {
		t.Error("expected both fields flagged")
	}
	if len(rep.Payloads) != 0 {
		t.Error("reporter must not be called")
	}
}

func TestSummaryScreen_FailureAllowsRetry(t *testing.T) {
	env, _, rep := screenstest.Env(t)
	rep.Err = errors.New("connection refused")
	s := newScreen(t, env, nil)
	fill(s, "Ada", "ada@example.com")

	submitNow(t, s)

	if s.Submitted() {
		t.Fatal("must not be submitted after failure")
	}
	if !s.failed || !strings.Contains(s.message, "connection refused") {
		t.Errorf("failed = %v message = %q", s.failed, s.message)
	}
	if s.focus != focusSubmit {
		t.Error("expected focus back on the submit button")
	}

	rep.Err = nil
	submitNow(t, s)

	if !s.Submitted() {
		t.Errorf("retry should succeed, message %q", s.message)
	}
	if len(rep.Payloads) != 2 {
		t.Errorf("payloads = %d, want 2", len(rep.Payloads))
	}
}

func TestSummaryScreen_RejectedReceipt(t *testing.T) {
	env, _, rep := screenstest.Env(t)
	rep.Reply = &exam.Receipt{Success: false, Message: "quota exceeded"}
	s := newScreen(t, env, nil)
	fill(s, "Ada", "ada@example.com")

	submitNow(t, s)

	if s.Submitted() || !strings.Contains(s.message, "quota exceeded") {
		t.Errorf("submitted = %v message = %q", s.Submitted(), s.message)
	}
}

func TestSummaryScreen_TabCyclesFocus(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	s := newScreen(t, env, nil)

	want := []focus{focusEmail, focusSubmit, focusReview, focusName}
	for _, f := range want {
		s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
		if s.focus != f {
			t.Fatalf("focus = %v, want %v", s.focus, f)
		}
	}
}

func TestSummaryScreen_TypingGoesToField(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	called := false
	s := newScreen(t, env, func() screen.Screen { called = true; return nil })

	for _, r := range "rob" {
		s.Update(screenstest.Key(r))
	}

	if s.name.Value() != "rob" {
		t.Errorf("name = %q, want %q", s.name.Value(), "rob")
	}
	if called {
		t.Error("typing r in a field must not retake")
	}
}

func TestSummaryScreen_Retake(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	next := &stubScreen{}
	s := newScreen(t, env, func() screen.Screen { return next })
	s.setFocus(focusReview)

	_, cmd := s.Update(screenstest.Key('r'))

	msg, ok := screenstest.Run(cmd).(router.ReplaceScreenMsg)
	if !ok || msg.Screen != next {
		t.Errorf("expected replace with retake screen, got %#v", msg)
	}
}

func TestSummaryScreen_EscGoesHome(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	s := newScreen(t, env, nil)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})

	if _, ok := screenstest.Run(cmd).(router.PopToRootMsg); !ok {
		t.Error("expected PopToRootMsg")
	}
}

func TestSummaryScreen_ReviewNavigation(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	s := newScreen(t, env, nil)
	s.setFocus(focusReview)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	if s.selected != 2 {
		t.Errorf("selected = %d, want 2", s.selected)
	}
	if !strings.Contains(s.View(100, 40), "Grant only what is needed.") {
		t.Error("expected the explanation of the selected question")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}

type stubScreen struct{}

func (stubScreen) Init() tea.Cmd                           { return nil }
func (s stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (stubScreen) View(int, int) string                    { return "" }
func (stubScreen) Title() string                           { return "stub" }
