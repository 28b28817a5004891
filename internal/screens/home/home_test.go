package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/router"
	"github.com/abhisek/secprep/internal/screens/history"
	sessionscreen "github.com/abhisek/secprep/internal/screens/session"
	"github.com/abhisek/secprep/internal/screens/screenstest"
	"github.com/abhisek/secprep/internal/store"
)

func labels(h *HomeScreen) []string {
	var out []string
	for _, it := range h.menu.Items {
		out = append(out, it.Label)
	}
	return out
}

func selectLabel(t *testing.T, h *HomeScreen, label string) tea.Msg {
	t.Helper()
	for i, it := range h.menu.Items {
		if it.Label == label {
			h.menu.Selected = i
			_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
			return screenstest.Run(cmd)
		}
	}
	t.Fatalf("no menu item %q in %v", label, labels(h))
	return nil
}

func TestHome_ListsBanks(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	h := New(env)

	got := labels(h)
	if len(got) != len(env.Banks.List())+2 {
		t.Errorf("menu = %v", got)
	}
	if got[len(got)-2] != "History" || got[len(got)-1] != "Quit" {
		t.Errorf("menu should end with History and Quit, got %v", got)
	}
}

func TestHome_StartPushesExam(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	h := New(env)
	b := env.Banks.List()[0]

	msg := selectLabel(t, h, b.Title)

	push, ok := msg.(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msg)
	}
	s, ok := push.Screen.(*sessionscreen.SessionScreen)
	if !ok {
		t.Fatalf("expected session screen, got %T", push.Screen)
	}
	if s.Session().TestType() != b.Slug {
		t.Errorf("test type = %q, want %q", s.Session().TestType(), b.Slug)
	}
}

func TestHome_ResumeItem(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	b := env.Banks.List()[0]

	sess, err := exam.New(b, 0)
	if err != nil {
		t.Fatal(err)
	}
	sess.SelectAnswer(0)
	sess.Next()
	err = env.Snapshots.Save(context.Background(), &store.Snapshot{
		TestType:  b.Slug,
		SessionID: "saved",
		Data:      store.SnapshotData{Version: store.SnapshotVersion, Session: sess.State()},
	})
	if err != nil {
		t.Fatal(err)
	}

	h := New(env)
	msg := selectLabel(t, h, "Resume "+b.Title)

	push, ok := msg.(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msg)
	}
	s := push.Screen.(*sessionscreen.SessionScreen)
	if s.Session().CurrentIndex() != 1 || s.Session().Answer(0) != 0 {
		t.Error("resumed session should keep saved progress")
	}
}

func TestHome_UnresumableSnapshotIsDropped(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	b := env.Banks.List()[0]

	err := env.Snapshots.Save(context.Background(), &store.Snapshot{
		TestType:  b.Slug,
		SessionID: "stale",
		Data: store.SnapshotData{Version: store.SnapshotVersion, Session: exam.State{
			TestType: b.Slug, Budget: 60, Remaining: 30, Answers: []int{0},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	h := New(env)
	if msg := selectLabel(t, h, "Resume "+b.Title); msg != nil {
		t.Errorf("expected no navigation, got %T", msg)
	}
	if !strings.Contains(h.notice, "Cannot resume") {
		t.Errorf("notice = %q", h.notice)
	}
	snap, _ := env.Snapshots.Latest(context.Background(), b.Slug)
	if snap != nil {
		t.Error("stale snapshot should be deleted")
	}
}

func TestHome_History(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	h := New(env)

	msg := selectLabel(t, h, "History")

	push, ok := msg.(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msg)
	}
	if _, ok := push.Screen.(*history.HistoryScreen); !ok {
		t.Errorf("expected history screen, got %T", push.Screen)
	}
}

func TestHome_QuitKey(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	h := New(env)

	_, cmd := h.Update(screenstest.Key('q'))
	if _, ok := screenstest.Run(cmd).(tea.QuitMsg); !ok {
		t.Error("expected quit")
	}
}

func TestHome_BestScoreDetail(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	b := env.Banks.List()[0]
	err := env.Events.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID: "x", TestType: b.Slug, Action: store.ActionSubmit, Score: 3, Total: 4,
	})
	if err != nil {
		t.Fatal(err)
	}

	h := New(env)
	for _, it := range h.menu.Items {
		if it.Label == b.Title && !strings.Contains(it.Detail, "best 75%") {
			t.Errorf("detail = %q, want best score", it.Detail)
		}
	}
}

func TestHome_View(t *testing.T) {
	env, _, _ := screenstest.Env(t)
	h := New(env)

	view := h.View(100, 30)
	if !strings.Contains(view, "History") {
		t.Error("expected menu in view")
	}
}
