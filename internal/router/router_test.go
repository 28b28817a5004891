package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/secprep/internal/screen"
)

type stubScreen struct {
	title   string
	initRan bool
	closed  bool
	updates int
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { s.updates++; return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }
func (s *stubScreen) Close()                                  { s.closed = true }

func TestPush(t *testing.T) {
	r := New(&stubScreen{title: "first"})

	s2 := &stubScreen{title: "second"}
	r.Update(PushScreenMsg{Screen: s2})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "second" {
		t.Errorf("expected active 'second', got %q", r.Active().Title())
	}
	if !s2.initRan {
		t.Error("expected Init() to run on pushed screen")
	}
}

func TestPopClosesScreen(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	r.Update(PopScreenMsg{})

	if r.Depth() != 1 || r.Active().Title() != "first" {
		t.Errorf("unexpected stack after pop: depth %d, active %q", r.Depth(), r.Active().Title())
	}
	if !s2.closed {
		t.Error("expected popped screen to be closed")
	}
}

func TestPopNoopAtBottom(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)

	r.Pop()

	if r.Depth() != 1 {
		t.Errorf("expected depth 1 after pop at bottom, got %d", r.Depth())
	}
	if s1.closed {
		t.Error("root screen must not be closed by a no-op pop")
	}
}

func TestReplace(t *testing.T) {
	r := New(&stubScreen{title: "first"})
	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	s3 := &stubScreen{title: "third"}
	r.Update(ReplaceScreenMsg{Screen: s3})

	if r.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", r.Depth())
	}
	if r.Active().Title() != "third" || !s3.initRan {
		t.Errorf("expected initialised 'third' on top, got %q", r.Active().Title())
	}
	if !s2.closed {
		t.Error("expected replaced screen to be closed")
	}
}

func TestPopToRoot(t *testing.T) {
	root := &stubScreen{title: "home"}
	r := New(root)
	a, b := &stubScreen{title: "a"}, &stubScreen{title: "b"}
	r.Push(a)
	r.Push(b)

	fresh := &stubScreen{title: "home2"}
	r.Update(PopToRootMsg{Screen: fresh})

	if r.Depth() != 1 || r.Active().Title() != "home2" {
		t.Fatalf("unexpected stack: depth %d, active %q", r.Depth(), r.Active().Title())
	}
	if !a.closed || !b.closed || !root.closed {
		t.Error("expected every removed screen to be closed")
	}
	if !fresh.initRan {
		t.Error("expected new root to be initialised")
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	s1 := &stubScreen{title: "first"}
	r := New(s1)
	s2 := &stubScreen{title: "second"}
	r.Push(s2)

	r.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	if s2.updates != 1 || s1.updates != 0 {
		t.Errorf("expected only the active screen to see the message, got %d/%d", s1.updates, s2.updates)
	}
}

func TestCommandHelpers(t *testing.T) {
	s := &stubScreen{title: "x"}
	if msg, ok := Push(s)().(PushScreenMsg); !ok || msg.Screen != s {
		t.Error("Push helper returned wrong message")
	}
	if _, ok := Pop().(PopScreenMsg); !ok {
		t.Error("Pop helper returned wrong message")
	}
	if msg, ok := Replace(s)().(ReplaceScreenMsg); !ok || msg.Screen != s {
		t.Error("Replace helper returned wrong message")
	}
}
