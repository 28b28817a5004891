package components

import (
	"github.com/abhisek/secprep/internal/ui/theme"
)

// Button is a styled button. Focused buttons are highlighted; the screen
// owning the button decides what enter does.
type Button struct {
	Label   string
	Focused bool
}

// NewButton creates a new button.
func NewButton(label string) Button {
	return Button{Label: label}
}

// View renders the button.
func (b Button) View() string {
	if b.Focused {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render(b.Label)
}
