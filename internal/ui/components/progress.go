package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/secprep/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar for a whole-number
// percentage.
type ProgressBar struct {
	Label   string
	Percent int
	Width   int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Width:   width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	barWidth := max(p.Width-lipgloss.Width(result)-6, 4)
	filled := min(max(barWidth*p.Percent/100, 0), barWidth)

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	return result + lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf(" %4d%%", p.Percent))
}
