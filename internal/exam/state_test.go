package exam

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestore_ResumesActiveSession(t *testing.T) {
	s := newSession(t, 30)
	answerAll(t, s, 1, 3)
	s.Tick()
	s.Restart()
	answerAll(t, s, 1, 0)
	s.Tick()
	s.Tick()

	data, err := json.Marshal(s.State())
	require.NoError(t, err)

	var st State
	require.NoError(t, json.Unmarshal(data, &st))

	r, err := Restore(threeQuestionBank(), st)
	require.NoError(t, err)
	assert.Equal(t, s.Answers(), r.Answers())
	assert.Equal(t, 1, r.CurrentIndex())
	assert.Equal(t, 28, r.RemainingSeconds())
	assert.Equal(t, 30, r.Budget())
	assert.Equal(t, 2, r.Attempt())
	assert.False(t, r.Completed())

	r.Submit()
	assert.Equal(t, 2, r.Score())
}

func TestRestore_CompletedIsRescored(t *testing.T) {
	s := newSession(t, 30)
	answerAll(t, s, 1, 0, 2)
	s.Submit()

	r, err := Restore(threeQuestionBank(), s.State())
	require.NoError(t, err)
	assert.True(t, r.Completed())
	assert.Equal(t, 3, r.Score())
	assert.Equal(t, ReasonSubmitted, r.Reason())
}

func TestRestore_ZeroRemainingExpires(t *testing.T) {
	st := newSession(t, 30).State()
	st.Remaining = 0

	r, err := Restore(threeQuestionBank(), st)
	require.NoError(t, err)
	assert.True(t, r.Completed())
	assert.Equal(t, ReasonExpired, r.Reason())
}

func TestRestore_Mismatch(t *testing.T) {
	base := func() State { return newSession(t, 30).State() }

	tests := []struct {
		name   string
		mutate func(*State)
	}{
		{"other bank", func(st *State) { st.TestType = "it-fundamentals" }},
		{"answer count", func(st *State) { st.Answers = st.Answers[:2] }},
		{"answer out of range", func(st *State) { st.Answers[1] = 4 }},
		{"current out of range", func(st *State) { st.Current = 3 }},
		{"remaining above budget", func(st *State) { st.Remaining = 31 }},
		{"zero budget", func(st *State) { st.Budget = 0; st.Remaining = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := base()
			tt.mutate(&st)
			_, err := Restore(threeQuestionBank(), st)
			assert.ErrorIs(t, err, ErrStateMismatch)
		})
	}
}
