// Package screenstest builds screen environments for tests.
package screenstest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/secprep/internal/bank"
	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/screens"
	"github.com/abhisek/secprep/internal/store"
)

// Bank returns a three-question bank whose correct answers are [1, 0, 2].
func Bank() *bank.Bank {
	return &bank.Bank{
		Slug:    "cybersecurity",
		Title:   "Cybersecurity",
		Version: "v1.0.0",
		Questions: []bank.Question{
			{ID: 1, Prompt: "Which port does HTTPS use?", Options: []string{"80", "443", "22", "25"}, Correct: 1, Category: "networking"},
			{ID: 2, Prompt: "AES is a ...", Options: []string{"symmetric cipher", "hash", "signature scheme"}, Correct: 0, Category: "cryptography"},
			{ID: 3, Prompt: "Least privilege limits ...", Options: []string{"bandwidth", "latency", "access rights"}, Correct: 2, Explanation: "Grant only what is needed."},
		},
	}
}

// Reporter records payloads and answers with Reply and Err.
type Reporter struct {
	mu       sync.Mutex
	Payloads []exam.Payload
	Reply    *exam.Receipt
	Err      error
}

func (r *Reporter) Report(_ context.Context, p exam.Payload) (*exam.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Payloads = append(r.Payloads, p)
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Reply != nil {
		return r.Reply, nil
	}
	return &exam.Receipt{Success: true, Message: "recorded"}, nil
}

// Env opens a store in a temp dir and returns an environment over it with
// the built-in banks.
func Env(t *testing.T) (*screens.Env, *store.Store, *Reporter) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg, err := bank.NewRegistry("")
	if err != nil {
		t.Fatalf("load banks: %v", err)
	}

	rep := &Reporter{}
	return &screens.Env{
		Banks:     reg,
		Events:    st.EventRepo(),
		Snapshots: st.SnapshotRepo(),
		Reporter:  rep,
	}, st, rep
}

// Key builds a key press for a printable rune.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Special builds a key press for a named key such as tea.KeyEnter.
func Special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Run executes cmd and returns its message, or nil.
func Run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}
