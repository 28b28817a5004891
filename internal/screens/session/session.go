// Package session is the exam screen: it renders the current question,
// forwards keys to the exam engine and drives its countdown.
package session

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/secprep/internal/bank"
	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/router"
	"github.com/abhisek/secprep/internal/screen"
	"github.com/abhisek/secprep/internal/screens"
	"github.com/abhisek/secprep/internal/screens/summary"
	"github.com/abhisek/secprep/internal/store"
	"github.com/abhisek/secprep/internal/ui/components"
	"github.com/abhisek/secprep/internal/ui/layout"
	"github.com/abhisek/secprep/internal/ui/theme"
)

// snapshotEvery is how many seconds pass between progress snapshots.
const snapshotEvery = 15

type mode int

const (
	modeAnswer mode = iota
	modeJump
	modeConfirmSubmit
	modeConfirmRestart
)

// SessionScreen implements screen.Screen for a running exam.
type SessionScreen struct {
	env       *screens.Env
	session   *exam.Session
	sessionID string

	// action is the lifecycle event recorded by the next Init.
	action string

	options   components.OptionList
	jump      components.TextInput
	mode      mode
	sinceSave int
	closed    bool

	// timer is the id of the live countdown chain.
	timer uint64
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)
var _ screen.Closer = (*SessionScreen)(nil)

// New starts a fresh attempt at b.
func New(env *screens.Env, b *bank.Bank) (*SessionScreen, error) {
	sess, err := exam.New(b, env.TimeLimit)
	if err != nil {
		return nil, err
	}
	return newScreen(env, sess, uuid.New().String(), store.ActionStart), nil
}

// Resume continues the attempt saved in snap.
func Resume(env *screens.Env, b *bank.Bank, snap *store.Snapshot) (*SessionScreen, error) {
	sess, err := exam.Restore(b, snap.Data.Session)
	if err != nil {
		return nil, err
	}
	id := snap.SessionID
	if id == "" {
		id = uuid.New().String()
	}
	return newScreen(env, sess, id, store.ActionResume), nil
}

func newScreen(env *screens.Env, sess *exam.Session, id, action string) *SessionScreen {
	s := &SessionScreen{
		env:       env,
		session:   sess,
		sessionID: id,
		action:    action,
	}
	s.syncOptions()
	return s
}

func (s *SessionScreen) Init() tea.Cmd {
	s.closed = false
	s.record(s.action)
	if s.session.Completed() {
		return s.finish()
	}
	return s.armTimer()
}

// armTimer starts a new countdown chain. Ticks of any earlier chain,
// including those of other screens over the same session, are dropped.
func (s *SessionScreen) armTimer() tea.Cmd {
	s.timer = timers.Add(1)
	return tickCmd(s.timer)
}

func (s *SessionScreen) Title() string {
	return s.session.Bank().Title
}

// Close stops the countdown. Pending ticks are dropped once closed.
func (s *SessionScreen) Close() {
	s.closed = true
}

// Session exposes the running exam, mainly for tests.
func (s *SessionScreen) Session() *exam.Session {
	return s.session
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeJump:
		return []layout.KeyHint{
			{Key: "0-9", Description: "Question number"},
			{Key: "Enter", Description: "Go"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeConfirmSubmit, modeConfirmRestart:
		return []layout.KeyHint{
			{Key: "Y", Description: "Confirm"},
			{Key: "N", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-9/Enter", Description: "Answer"},
		{Key: "n/p", Description: "Next/Prev"},
		{Key: "g", Description: "Go to"},
		{Key: "s", Description: "Submit"},
		{Key: "r", Description: "Restart"},
		{Key: "Esc", Description: "Save & leave"},
	}
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		return s.handleTick(msg)

	case tea.KeyPressMsg:
		switch s.mode {
		case modeJump:
			return s.handleJumpKey(msg)
		case modeConfirmSubmit, modeConfirmRestart:
			return s.handleConfirmKey(msg)
		}
		return s.handleKey(msg)
	}

	if s.mode == modeJump {
		var cmd tea.Cmd
		s.jump, cmd = s.jump.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SessionScreen) handleTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	if s.closed || s.session.Completed() || msg.Timer != s.timer {
		return s, nil
	}

	if s.session.Tick() {
		return s, s.finish()
	}

	s.sinceSave++
	if s.sinceSave >= snapshotEvery {
		s.saveSnapshot()
	}
	return s, tickCmd(s.timer)
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		s.choose(int(key[0] - '1'))
		return s, nil
	}

	switch key {
	case "up", "k":
		s.options.Up()
	case "down", "j":
		s.options.Down()
	case "enter", "space":
		s.choose(s.options.Cursor)
	case "x", "backspace":
		s.session.ClearAnswer()
		s.syncOptions()
	case "n", "right", "l":
		s.session.Next()
		s.syncOptions()
	case "p", "left", "h":
		s.session.Previous()
		s.syncOptions()
	case "g":
		s.mode = modeJump
		s.jump = components.NewTextInput(
			fmt.Sprintf("Go to question (1-%d)", s.session.QuestionCount()),
			"", true, 4)
		return s, s.jump.Focus()
	case "s":
		s.mode = modeConfirmSubmit
	case "r":
		s.mode = modeConfirmRestart
	case "esc":
		return s, s.leave()
	}
	return s, nil
}

func (s *SessionScreen) handleJumpKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.mode = modeAnswer
		return s, nil
	case "enter":
		n, err := s.jump.NumericValue()
		if err == nil {
			err = s.session.JumpTo(n - 1)
		}
		if err != nil {
			s.jump.Err = "no such question"
			return s, nil
		}
		s.mode = modeAnswer
		s.syncOptions()
		return s, nil
	}

	var cmd tea.Cmd
	s.jump, cmd = s.jump.Update(msg)
	return s, cmd
}

func (s *SessionScreen) handleConfirmKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m := s.mode
		s.mode = modeAnswer
		if m == modeConfirmSubmit {
			if s.session.Submit() {
				return s, s.finish()
			}
			return s, nil
		}
		return s, s.restart()
	case "n", "N", "esc":
		s.mode = modeAnswer
	}
	return s, nil
}

// choose records option for the current question. Options the question
// does not have are ignored.
func (s *SessionScreen) choose(option int) {
	if err := s.session.SelectAnswer(option); err != nil {
		return
	}
	s.syncOptions()

	q := s.session.CurrentQuestion()
	_ = s.env.Events.AppendAnswerEvent(context.Background(), store.AnswerEventData{
		SessionID:     s.sessionID,
		TestType:      s.session.TestType(),
		QuestionID:    q.ID,
		QuestionIndex: s.session.CurrentIndex(),
		Option:        option,
		Correct:       q.IsCorrect(option),
	})
}

func (s *SessionScreen) restart() tea.Cmd {
	s.session.Restart()
	s.sinceSave = 0
	s.syncOptions()
	s.record(store.ActionRestart)
	s.saveSnapshot()
	return s.armTimer()
}

// retake is handed to the summary screen. It restarts the exam and
// returns this screen to be initialised again.
func (s *SessionScreen) retake() screen.Screen {
	s.session.Restart()
	s.sinceSave = 0
	s.mode = modeAnswer
	s.action = store.ActionRestart
	s.syncOptions()
	return s
}

// finish records the outcome, drops the saved progress and moves on to
// the summary.
func (s *SessionScreen) finish() tea.Cmd {
	action := store.ActionSubmit
	if s.session.Reason() == exam.ReasonExpired {
		action = store.ActionExpire
	}
	s.record(action)
	_ = s.env.Snapshots.Delete(context.Background(), s.session.TestType())

	next := summary.New(s.env, s.session, s.sessionID, s.retake)
	return router.Replace(next)
}

// leave saves progress and returns to the menu.
func (s *SessionScreen) leave() tea.Cmd {
	s.saveSnapshot()
	s.record(store.ActionAbandon)
	s.Close()
	return router.PopToRoot(s.env.HomeScreen())
}

func (s *SessionScreen) saveSnapshot() {
	s.sinceSave = 0
	_ = s.env.Snapshots.Save(context.Background(), &store.Snapshot{
		TestType:  s.session.TestType(),
		SessionID: s.sessionID,
		Data: store.SnapshotData{
			Version: store.SnapshotVersion,
			Session: s.session.State(),
		},
	})
}

func (s *SessionScreen) record(action string) {
	_ = s.env.Events.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID:     s.sessionID,
		TestType:      s.session.TestType(),
		Action:        action,
		Attempt:       s.session.Attempt(),
		Answered:      s.session.AnsweredCount(),
		Score:         s.session.Score(),
		Total:         s.session.QuestionCount(),
		RemainingSecs: s.session.RemainingSeconds(),
	})
}

func (s *SessionScreen) syncOptions() {
	q := s.session.CurrentQuestion()
	s.options = components.NewOptionList(q.Options, s.session.CurrentAnswer())
}

// Status is the countdown shown in the header.
func (s *SessionScreen) Status() string {
	rem := s.session.RemainingSeconds()
	return theme.TimerStyle(rem).Render("⏱ " + formatClock(rem))
}

func formatClock(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
