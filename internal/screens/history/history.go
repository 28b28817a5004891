package history

import (
	"context"
	"fmt"
	"image/color"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/secprep/internal/router"
	"github.com/abhisek/secprep/internal/screen"
	"github.com/abhisek/secprep/internal/store"
	"github.com/abhisek/secprep/internal/ui/layout"
	"github.com/abhisek/secprep/internal/ui/theme"
)

type historyLoadedMsg struct {
	Results []store.ResultEvent
	Best    map[string]store.BestScore
	Err     error
}

// HistoryScreen displays best scores per exam and past result deliveries.
type HistoryScreen struct {
	eventRepo store.EventRepo
	results   []store.ResultEvent
	best      []store.BestScore
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		results, err := s.eventRepo.QueryResults(ctx, store.QueryOpts{Limit: 50})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		best, err := s.eventRepo.BestScores(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Results: results, Best: best}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.results = msg.Results
			s.best = sortedBest(msg.Best)
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.results)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.results) == 0 && len(s.best) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No finished exams yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	if len(s.best) > 0 {
		b.WriteString(center.Render(theme.Subtitle.Render("Best scores")) + "\n")
		for _, bs := range s.best {
			line := fmt.Sprintf("%-24s %3d/%-3d %4d%%   %d attempt(s)",
				bs.TestType, bs.Score, bs.Total, bs.Percentage(), bs.Attempts)
			b.WriteString(center.Render(theme.Body.Render(line)) + "\n")
		}
		b.WriteString("\n")
	}

	if len(s.results) > 0 {
		b.WriteString(center.Render(theme.Subtitle.Render("Submitted results")) + "\n")
	}
	for i, r := range s.results {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		status := "✓"
		if !r.Success {
			status = "✗"
		}
		line := fmt.Sprintf("%s%s  %s  %-20s %d/%d  %s via %s",
			prefix, r.Timestamp.Format("Jan 02, 2006 15:04"), status,
			r.TestType, r.Score, r.Total, formatDuration(r.TimeTaken), r.Reporter)

		style := lipgloss.NewStyle().Foreground(statusColor(r.Success))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(center.Render(style.Render(line)) + "\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    %s <%s>", r.Name, r.Email)
			if r.Message != "" {
				detail += "  " + r.Message
			}
			b.WriteString(center.Render(theme.Hint.Render(detail)) + "\n")
		}
	}

	return b.String()
}

func statusColor(ok bool) color.Color {
	if ok {
		return theme.Text
	}
	return theme.Error
}

func sortedBest(m map[string]store.BestScore) []store.BestScore {
	out := make([]store.BestScore, 0, len(m))
	for _, bs := range m {
		out = append(out, bs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TestType < out[j].TestType })
	return out
}

func formatDuration(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
