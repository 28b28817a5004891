package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/secprep/internal/ui/theme"
)

// ContentWidth returns the inner width used for cards on a frame of the
// given width, clamped to a readable line length.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 90)
}

// Card wraps content in a rounded-border card at the given content width.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(cw - 2).
		Padding(0, 1).
		Render(content)
}

// Center places content in the middle of a width x height box.
func Center(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
