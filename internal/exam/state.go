package exam

import (
	"fmt"

	"github.com/abhisek/secprep/internal/bank"
)

// State is the serializable form of a Session, used to resume an attempt
// after the program exits. The engine itself never persists it.
type State struct {
	TestType    string `json:"test_type"`
	BankVersion string `json:"bank_version"`
	Budget      int    `json:"budget"`
	Current     int    `json:"current"`
	Answers     []int  `json:"answers"`
	Remaining   int    `json:"remaining"`
	Completed   bool   `json:"completed"`
	Reason      string `json:"reason,omitempty"`
	Attempt     int    `json:"attempt"`
}

// State captures the session for later Restore.
func (s *Session) State() State {
	return State{
		TestType:    s.TestType(),
		BankVersion: s.bank.Version,
		Budget:      s.budget,
		Current:     s.current,
		Answers:     s.Answers(),
		Remaining:   s.remaining,
		Completed:   s.phase == PhaseCompleted,
		Reason:      string(s.reason),
		Attempt:     s.attempt,
	}
}

// Restore rebuilds a session from st. The state must belong to b: same slug,
// same question count and every answer a valid option. A completed state is
// rescored against b rather than trusting a stored score.
func Restore(b *bank.Bank, st State) (*Session, error) {
	if b == nil || b.Len() == 0 {
		return nil, fmt.Errorf("%w: empty bank", ErrStateMismatch)
	}
	if st.TestType != b.Slug {
		return nil, fmt.Errorf("%w: state is for %q, bank is %q", ErrStateMismatch, st.TestType, b.Slug)
	}
	if len(st.Answers) != b.Len() {
		return nil, fmt.Errorf("%w: %d answers for %d questions", ErrStateMismatch, len(st.Answers), b.Len())
	}
	if st.Budget <= 0 || st.Remaining < 0 || st.Remaining > st.Budget {
		return nil, fmt.Errorf("%w: remaining %d outside budget %d", ErrStateMismatch, st.Remaining, st.Budget)
	}
	if st.Current < 0 || st.Current >= b.Len() {
		return nil, fmt.Errorf("%w: current index %d", ErrStateMismatch, st.Current)
	}
	for i, a := range st.Answers {
		if a != Unanswered && !b.Question(i).ValidOption(a) {
			return nil, fmt.Errorf("%w: answer %d for question %d", ErrStateMismatch, a, i+1)
		}
	}

	s := &Session{
		bank:      b,
		budget:    st.Budget,
		current:   st.Current,
		answers:   append([]int(nil), st.Answers...),
		remaining: st.Remaining,
		phase:     PhaseActive,
		attempt:   max(st.Attempt, 1),
	}
	switch {
	case st.Completed:
		reason := CompletionReason(st.Reason)
		if reason == ReasonNone {
			reason = ReasonSubmitted
		}
		s.complete(reason)
	case st.Remaining == 0:
		s.complete(ReasonExpired)
	}
	return s, nil
}
