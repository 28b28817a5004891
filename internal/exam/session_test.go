package exam

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/secprep/internal/bank"
)

// threeQuestionBank has correct answers [1, 0, 2].
func threeQuestionBank() *bank.Bank {
	return &bank.Bank{
		Slug:    "cybersecurity",
		Title:   "Cybersecurity",
		Version: "v1.0.0",
		Questions: []bank.Question{
			{ID: 1, Prompt: "Q1", Options: []string{"a", "b", "c", "d"}, Correct: 1, Category: "crypto"},
			{ID: 2, Prompt: "Q2", Options: []string{"a", "b", "c", "d"}, Correct: 0, Category: "net"},
			{ID: 3, Prompt: "Q3", Options: []string{"a", "b", "c", "d"}, Correct: 2},
		},
	}
}

func newSession(t *testing.T, budget int) *Session {
	t.Helper()
	s, err := New(threeQuestionBank(), budget)
	require.NoError(t, err)
	return s
}

func answerAll(t *testing.T, s *Session, answers ...int) {
	t.Helper()
	for i, a := range answers {
		require.NoError(t, s.JumpTo(i))
		require.NoError(t, s.SelectAnswer(a))
	}
}

func assertInitial(t *testing.T, s *Session) {
	t.Helper()
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, []int{Unanswered, Unanswered, Unanswered}, s.Answers())
	assert.Equal(t, s.Budget(), s.RemainingSeconds())
	assert.False(t, s.Completed())
	assert.Equal(t, PhaseActive, s.Phase())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, ReasonNone, s.Reason())
}

func TestNew_InitialState(t *testing.T) {
	s := newSession(t, 0)
	assertInitial(t, s)
	assert.Equal(t, DefaultTimeLimit, s.Budget())
	assert.Equal(t, 3, s.QuestionCount())
	assert.Equal(t, "cybersecurity", s.TestType())
	assert.Equal(t, 1, s.Attempt())
}

func TestNew_EmptyBank(t *testing.T) {
	_, err := New(&bank.Bank{Slug: "empty"}, 10)
	assert.Error(t, err)
	_, err = New(nil, 10)
	assert.Error(t, err)
}

func TestResolveTimeLimit(t *testing.T) {
	b := threeQuestionBank()
	assert.Equal(t, DefaultTimeLimit, ResolveTimeLimit(0, b))
	b.TimeLimitSecs = 300
	assert.Equal(t, 300, ResolveTimeLimit(0, b))
	assert.Equal(t, 60, ResolveTimeLimit(60, b))
	assert.Equal(t, 300, ResolveTimeLimit(-5, b))
}

func TestScore_ExampleFromAnswerKey(t *testing.T) {
	s := newSession(t, 60)
	answerAll(t, s, 1, 1, 2)

	assert.True(t, s.Submit())
	assert.Equal(t, 2, s.Score())
	assert.True(t, s.Completed())
	assert.Equal(t, ReasonSubmitted, s.Reason())
	assert.Equal(t, 67, s.CompletionPercentage())
}

func TestScore_PerQuestionContribution(t *testing.T) {
	for q := 0; q < 3; q++ {
		for opt := 0; opt < 4; opt++ {
			s := newSession(t, 60)
			require.NoError(t, s.JumpTo(q))
			require.NoError(t, s.SelectAnswer(opt))
			s.Submit()

			want := 0
			if opt == s.Bank().Question(q).Correct {
				want = 1
			}
			assert.Equal(t, want, s.Score(), "question %d option %d", q, opt)
		}
	}
}

func TestSelectAnswer_Overwrites(t *testing.T) {
	s := newSession(t, 60)
	require.NoError(t, s.SelectAnswer(3))
	require.NoError(t, s.SelectAnswer(1))
	assert.Equal(t, 1, s.CurrentAnswer())
	assert.Equal(t, 1, s.AnsweredCount())
}

func TestSelectAnswer_OutOfRange(t *testing.T) {
	s := newSession(t, 60)
	require.NoError(t, s.SelectAnswer(2))

	err := s.SelectAnswer(5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	var ie *IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 5, ie.Index)
	assert.Equal(t, 4, ie.Limit)

	assert.Equal(t, 2, s.CurrentAnswer(), "answer must be unchanged")
	assert.ErrorIs(t, s.SelectAnswer(-1), ErrInvalidArgument)
	assert.Equal(t, 2, s.CurrentAnswer())
}

func TestSelectAnswer_IgnoredAfterCompletion(t *testing.T) {
	s := newSession(t, 60)
	require.NoError(t, s.SelectAnswer(1))
	s.Submit()

	assert.NoError(t, s.SelectAnswer(0))
	assert.NoError(t, s.SelectAnswer(99))
	assert.Equal(t, 1, s.CurrentAnswer())
	s.ClearAnswer()
	assert.Equal(t, 1, s.CurrentAnswer())
	assert.Equal(t, 1, s.Score())
}

func TestClearAnswer(t *testing.T) {
	s := newSession(t, 60)
	require.NoError(t, s.SelectAnswer(1))
	s.ClearAnswer()
	assert.Equal(t, Unanswered, s.CurrentAnswer())
}

func TestNavigation_StaysInRange(t *testing.T) {
	s := newSession(t, 60)

	s.Previous()
	assert.Equal(t, 0, s.CurrentIndex())

	for i := 0; i < 10; i++ {
		s.Next()
		assert.Less(t, s.CurrentIndex(), s.QuestionCount())
	}
	assert.Equal(t, 2, s.CurrentIndex())

	for i := 0; i < 10; i++ {
		s.Previous()
		assert.GreaterOrEqual(t, s.CurrentIndex(), 0)
	}
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestNavigation_DoesNotRequireAnswer(t *testing.T) {
	s := newSession(t, 60)
	s.Next()
	s.Next()
	assert.Equal(t, 2, s.CurrentIndex())
	assert.Equal(t, 0, s.AnsweredCount())
}

func TestJumpTo(t *testing.T) {
	s := newSession(t, 60)
	require.NoError(t, s.JumpTo(2))
	assert.Equal(t, 2, s.CurrentIndex())

	assert.ErrorIs(t, s.JumpTo(3), ErrInvalidArgument)
	assert.ErrorIs(t, s.JumpTo(-1), ErrInvalidArgument)
	assert.Equal(t, 2, s.CurrentIndex())
}

func TestJumpTo_AllowedForReview(t *testing.T) {
	s := newSession(t, 60)
	s.Submit()
	require.NoError(t, s.JumpTo(1))
	s.Next()
	assert.Equal(t, 2, s.CurrentIndex())
}

func TestSubmit_Idempotent(t *testing.T) {
	s := newSession(t, 60)
	answerAll(t, s, 1, 0, 0)
	require.True(t, s.Submit())
	score := s.Score()

	assert.False(t, s.Submit())
	assert.Equal(t, score, s.Score())
	assert.True(t, s.Completed())
	assert.Equal(t, ReasonSubmitted, s.Reason())
}

func TestTick_CountsDown(t *testing.T) {
	s := newSession(t, 5)
	assert.False(t, s.Tick())
	assert.False(t, s.Tick())
	assert.Equal(t, 3, s.RemainingSeconds())
	assert.Equal(t, 2, s.TimeTaken())
	assert.False(t, s.Completed())
}

func TestTick_ExpiresAfterBudget(t *testing.T) {
	s := newSession(t, 5)
	for i := 0; i < 4; i++ {
		assert.False(t, s.Tick(), "tick %d", i+1)
	}
	assert.True(t, s.Tick())

	assert.True(t, s.Completed())
	assert.Equal(t, 0, s.RemainingSeconds())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, ReasonExpired, s.Reason())

	assert.False(t, s.Tick())
	assert.Equal(t, 0, s.RemainingSeconds())
	assert.Equal(t, 5, s.TimeTaken())
}

func TestTick_ExpiryScoresCurrentAnswers(t *testing.T) {
	s := newSession(t, 3)
	answerAll(t, s, 1, 0, 1)
	for i := 0; i < 3; i++ {
		s.Tick()
	}
	assert.True(t, s.Completed())
	assert.Equal(t, 2, s.Score())
}

func TestTick_IgnoredAfterSubmit(t *testing.T) {
	s := newSession(t, 10)
	s.Tick()
	s.Submit()
	for i := 0; i < 20; i++ {
		assert.False(t, s.Tick())
	}
	assert.Equal(t, 9, s.RemainingSeconds())
	assert.Equal(t, ReasonSubmitted, s.Reason())
}

func TestRestart_ReturnsToInitialState(t *testing.T) {
	t.Run("mid session", func(t *testing.T) {
		s := newSession(t, 30)
		answerAll(t, s, 1, 2, 3)
		s.Tick()
		s.Tick()
		s.Restart()
		assertInitial(t, s)
		assert.Equal(t, 2, s.Attempt())
	})

	t.Run("after completion", func(t *testing.T) {
		s := newSession(t, 30)
		answerAll(t, s, 1, 0, 2)
		s.Submit()
		require.Equal(t, 3, s.Score())
		s.Restart()
		assertInitial(t, s)
	})

	t.Run("after expiry", func(t *testing.T) {
		s := newSession(t, 2)
		s.Tick()
		s.Tick()
		require.True(t, s.Completed())
		s.Restart()
		assertInitial(t, s)
		assert.Equal(t, 2, s.RemainingSeconds())
	})
}

func TestAnswers_ReturnsCopy(t *testing.T) {
	s := newSession(t, 30)
	got := s.Answers()
	got[0] = 3
	assert.Equal(t, Unanswered, s.Answer(0))
}

func TestPercentages(t *testing.T) {
	s := newSession(t, 30)
	assert.Equal(t, 0, s.ProgressPercentage())

	require.NoError(t, s.SelectAnswer(1))
	assert.Equal(t, 33, s.ProgressPercentage())

	s.Next()
	require.NoError(t, s.SelectAnswer(3))
	assert.Equal(t, 67, s.ProgressPercentage())

	s.Submit()
	assert.Equal(t, 33, s.CompletionPercentage())
}

func TestSummary(t *testing.T) {
	s := newSession(t, 30)
	answerAll(t, s, 1, 1)
	s.Tick()
	s.Submit()

	sum := s.Summary()
	assert.Equal(t, 1, sum.Score)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Answered)
	assert.Equal(t, 33, sum.Percentage)
	assert.Equal(t, 1, sum.TimeTaken)
	require.Len(t, sum.Items, 3)
	assert.True(t, sum.Items[0].Correct())
	assert.False(t, sum.Items[1].Correct())
	assert.False(t, sum.Items[2].Answered())

	missed := sum.Missed()
	require.Len(t, missed, 2)
	assert.Equal(t, 1, missed[0].Index)

	cats := sum.ByCategory()
	require.Len(t, cats, 3)
	assert.Equal(t, CategoryScore{Category: "crypto", Correct: 1, Total: 1}, cats[0])
	assert.Equal(t, CategoryScore{Category: "net", Correct: 0, Total: 1}, cats[1])
	assert.Equal(t, "general", cats[2].Category)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "active", PhaseActive.String())
	assert.Equal(t, "completed", PhaseCompleted.String())
}

func TestPhase_FollowsLifecycle(t *testing.T) {
	s := newSession(t, 0)
	assert.Equal(t, PhaseActive, s.Phase())
	s.Submit()
	assert.Equal(t, PhaseCompleted, s.Phase())
	s.Restart()
	assert.Equal(t, PhaseActive, s.Phase())
}
