// Package home is the start screen: pick a question bank, resume a saved
// attempt or browse past results.
package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/secprep/internal/bank"
	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/router"
	"github.com/abhisek/secprep/internal/screen"
	"github.com/abhisek/secprep/internal/screens"
	"github.com/abhisek/secprep/internal/screens/history"
	sessionscreen "github.com/abhisek/secprep/internal/screens/session"
	"github.com/abhisek/secprep/internal/store"
	"github.com/abhisek/secprep/internal/ui/components"
	"github.com/abhisek/secprep/internal/ui/layout"
	"github.com/abhisek/secprep/internal/ui/theme"
)

// HomeScreen is the main menu.
type HomeScreen struct {
	env    *screens.Env
	menu   components.Menu
	notice string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New builds the menu from the bank registry, saved progress and best
// scores. Store failures only cost the extra detail.
func New(env *screens.Env) *HomeScreen {
	h := &HomeScreen{env: env}
	ctx := context.Background()

	snaps := make(map[string]*store.Snapshot)
	if list, err := env.Snapshots.List(ctx); err == nil {
		for _, sn := range list {
			snaps[sn.TestType] = sn
		}
	} else {
		h.notice = "Saved progress unavailable: " + err.Error()
	}

	best, _ := env.Events.BestScores(ctx)

	var items []components.MenuItem
	for _, b := range env.Banks.List() {
		if sn, ok := snaps[b.Slug]; ok {
			items = append(items, components.MenuItem{
				Label:  "Resume " + b.Title,
				Detail: resumeDetail(sn),
				Action: h.resumeAction(b, sn),
			})
		}
		items = append(items, components.MenuItem{
			Label:  b.Title,
			Detail: bankDetail(b, env.TimeLimit, best),
			Action: h.startAction(b),
		})
	}
	items = append(items,
		components.MenuItem{Label: "History", Action: func() tea.Cmd {
			return router.Push(history.New(env.Events))
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)

	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) startAction(b *bank.Bank) func() tea.Cmd {
	return func() tea.Cmd {
		s, err := sessionscreen.New(h.env, b)
		if err != nil {
			h.notice = err.Error()
			return nil
		}
		return router.Push(s)
	}
}

func (h *HomeScreen) resumeAction(b *bank.Bank, sn *store.Snapshot) func() tea.Cmd {
	return func() tea.Cmd {
		s, err := sessionscreen.Resume(h.env, b, sn)
		if err != nil {
			// The bank changed under the saved attempt; it cannot be resumed.
			_ = h.env.Snapshots.Delete(context.Background(), b.Slug)
			h.notice = fmt.Sprintf("Cannot resume %s: %v", b.Title, err)
			return nil
		}
		return router.Push(s)
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "q", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		if kmsg.String() == "q" {
			return h, tea.Quit
		}
		h.notice = ""
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height + 6)

	sections := []string{
		renderBanner(width, compact),
		theme.Subtitle.Render("Timed practice exams for IT and security certifications"),
		h.menu.View(),
	}
	if h.notice != "" {
		sections = append(sections, theme.ErrorText.Render(h.notice))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(sections, "\n\n"))
}

func bankDetail(b *bank.Bank, limit int, best map[string]store.BestScore) string {
	mins := exam.ResolveTimeLimit(limit, b) / 60
	parts := []string{fmt.Sprintf("%d questions", b.Len()), fmt.Sprintf("%d min", mins)}
	if bs, ok := best[b.Slug]; ok {
		parts = append(parts, fmt.Sprintf("best %d%%", bs.Percentage()))
	}
	return strings.Join(parts, " · ")
}

func resumeDetail(sn *store.Snapshot) string {
	st := sn.Data.Session
	answered := 0
	for _, a := range st.Answers {
		if a != exam.Unanswered {
			answered++
		}
	}
	return fmt.Sprintf("%d/%d answered · %d:%02d left · saved %s",
		answered, len(st.Answers), st.Remaining/60, st.Remaining%60,
		sn.Timestamp.Format(time.DateTime))
}
