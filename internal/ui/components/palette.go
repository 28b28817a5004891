package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/secprep/internal/ui/theme"
)

// Palette is the grid of question numbers shown beside an exam. Answered
// questions are filled, the current one is bracketed.
type Palette struct {
	Answered []bool
	Current  int
	PerRow   int
}

// View renders the palette.
func (p Palette) View() string {
	perRow := p.PerRow
	if perRow <= 0 {
		perRow = 10
	}
	answered := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	open := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i, done := range p.Answered {
		cell := fmt.Sprintf(" %2d ", i+1)
		if i == p.Current {
			cell = fmt.Sprintf("[%2d]", i+1)
		}
		switch {
		case i == p.Current:
			b.WriteString(theme.Selected.Render(cell))
		case done:
			b.WriteString(answered.Render(cell))
		default:
			b.WriteString(open.Render(cell))
		}
		if (i+1)%perRow == 0 && i+1 < len(p.Answered) {
			b.WriteString("\n")
		}
	}
	return b.String()
}
