// Package exam implements the timed multiple-choice exam session: answer
// selection, navigation, the countdown, scoring and result submission.
//
// A Session is not safe for concurrent use. The TUI drives it from a single
// event loop and calls Tick once per elapsed second.
package exam

import (
	"errors"
	"math"

	"github.com/abhisek/secprep/internal/bank"
)

// Unanswered marks an answer slot with no option chosen.
const Unanswered = -1

// DefaultTimeLimit is the countdown budget in seconds when neither the
// caller nor the bank sets one.
const DefaultTimeLimit = 1200

// Phase is the session state machine position.
type Phase int

const (
	PhaseActive    Phase = iota // Accepting answers, navigation and ticks
	PhaseCompleted              // Scored; navigation allowed for review only
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// CompletionReason records how the session reached PhaseCompleted.
type CompletionReason string

const (
	ReasonNone      CompletionReason = ""
	ReasonSubmitted CompletionReason = "submitted"
	ReasonExpired   CompletionReason = "expired"
)

// Session is one attempt at a question bank.
type Session struct {
	bank   *bank.Bank
	budget int

	current   int
	answers   []int
	remaining int
	phase     Phase
	score     int
	reason    CompletionReason

	// attempt increments on every Restart so timer ticks scheduled for an
	// earlier attempt can be told apart.
	attempt int
}

// ResolveTimeLimit picks the countdown budget: an explicit positive limit
// wins, then the bank's own limit, then DefaultTimeLimit.
func ResolveTimeLimit(limit int, b *bank.Bank) int {
	if limit > 0 {
		return limit
	}
	if b != nil && b.TimeLimitSecs > 0 {
		return b.TimeLimitSecs
	}
	return DefaultTimeLimit
}

// New starts a fresh session over b. See ResolveTimeLimit for timeLimit.
func New(b *bank.Bank, timeLimit int) (*Session, error) {
	if b == nil || b.Len() == 0 {
		return nil, errors.New("exam: bank has no questions")
	}
	s := &Session{
		bank:    b,
		budget:  ResolveTimeLimit(timeLimit, b),
		answers: make([]int, b.Len()),
		attempt: 1,
	}
	s.reset()
	return s, nil
}

func (s *Session) reset() {
	s.current = 0
	for i := range s.answers {
		s.answers[i] = Unanswered
	}
	s.remaining = s.budget
	s.phase = PhaseActive
	s.score = 0
	s.reason = ReasonNone
}

// SelectAnswer records option for the current question, overwriting any
// earlier choice. Out-of-range options return an *IndexError wrapping
// ErrInvalidArgument and leave the answer unchanged. After completion the
// call is ignored.
func (s *Session) SelectAnswer(option int) error {
	if s.phase == PhaseCompleted {
		return nil
	}
	q := s.bank.Question(s.current)
	if !q.ValidOption(option) {
		return &IndexError{Op: "select answer", Index: option, Limit: len(q.Options)}
	}
	s.answers[s.current] = option
	return nil
}

// ClearAnswer resets the current question to Unanswered. Ignored after completion.
func (s *Session) ClearAnswer() {
	if s.phase == PhaseCompleted {
		return
	}
	s.answers[s.current] = Unanswered
}

// Next moves to the following question; no-op on the last one.
func (s *Session) Next() {
	if s.current < len(s.answers)-1 {
		s.current++
	}
}

// Previous moves to the preceding question; no-op on the first one.
func (s *Session) Previous() {
	if s.current > 0 {
		s.current--
	}
}

// JumpTo moves directly to question index. Allowed after completion for review.
func (s *Session) JumpTo(index int) error {
	if index < 0 || index >= len(s.answers) {
		return &IndexError{Op: "jump", Index: index, Limit: len(s.answers)}
	}
	s.current = index
	return nil
}

// Tick consumes one second of the budget. When the countdown reaches zero
// the session is submitted and Tick returns true. Ticks after completion
// are ignored.
func (s *Session) Tick() bool {
	if s.phase == PhaseCompleted {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.complete(ReasonExpired)
		return true
	}
	return false
}

// Submit scores the session and moves it to PhaseCompleted. It returns
// false when the session was already completed; the score is not recomputed.
func (s *Session) Submit() bool {
	if s.phase == PhaseCompleted {
		return false
	}
	s.complete(ReasonSubmitted)
	return true
}

func (s *Session) complete(reason CompletionReason) {
	score := 0
	for i, a := range s.answers {
		if a != Unanswered && s.bank.Question(i).IsCorrect(a) {
			score++
		}
	}
	s.score = score
	s.reason = reason
	s.phase = PhaseCompleted
}

// Restart discards all progress and returns to the initial state with the
// full budget. Allowed at any time.
func (s *Session) Restart() {
	s.attempt++
	s.reset()
}

// Bank returns the question bank the session runs over.
func (s *Session) Bank() *bank.Bank { return s.bank }

// TestType is the label reported with results (the bank slug).
func (s *Session) TestType() string { return s.bank.Slug }

// QuestionCount returns the number of questions.
func (s *Session) QuestionCount() int { return len(s.answers) }

// CurrentIndex returns the 0-based index of the active question.
func (s *Session) CurrentIndex() int { return s.current }

// CurrentQuestion returns the active question.
func (s *Session) CurrentQuestion() bank.Question { return s.bank.Question(s.current) }

// Answer returns the chosen option for question i, or Unanswered.
func (s *Session) Answer(i int) int { return s.answers[i] }

// CurrentAnswer returns the chosen option for the active question.
func (s *Session) CurrentAnswer() int { return s.answers[s.current] }

// Answers returns a copy of all answer slots.
func (s *Session) Answers() []int {
	out := make([]int, len(s.answers))
	copy(out, s.answers)
	return out
}

// Budget returns the initial countdown in seconds.
func (s *Session) Budget() int { return s.budget }

// RemainingSeconds returns the seconds left on the countdown.
func (s *Session) RemainingSeconds() int { return s.remaining }

// TimeTaken returns budget minus remaining seconds.
func (s *Session) TimeTaken() int { return s.budget - s.remaining }

// Phase returns PhaseActive until the session is submitted or expires.
func (s *Session) Phase() Phase { return s.phase }

// Completed reports whether the session has been submitted or expired.
func (s *Session) Completed() bool { return s.phase == PhaseCompleted }

// Reason reports how the session completed, or ReasonNone while active.
func (s *Session) Reason() CompletionReason { return s.reason }

// Score returns the number of correct answers. Only final once Completed.
func (s *Session) Score() int { return s.score }

// Attempt starts at 1 and increments on every Restart.
func (s *Session) Attempt() int { return s.attempt }

// AnsweredCount returns how many questions have an answer.
func (s *Session) AnsweredCount() int {
	n := 0
	for _, a := range s.answers {
		if a != Unanswered {
			n++
		}
	}
	return n
}

// CompletionPercentage is round(100 * score / questions). Meaningful once completed.
func (s *Session) CompletionPercentage() int {
	return percent(s.score, len(s.answers))
}

// ProgressPercentage is round(100 * answered / questions).
func (s *Session) ProgressPercentage() int {
	return percent(s.AnsweredCount(), len(s.answers))
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
