package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/secprep/internal/ui/layout"
)

// Screen is one page of the TUI. The router delivers messages only to the
// screen on top of its stack.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, excluding header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider lets a screen put short status text, such as a countdown,
// on the right side of the header.
type StatusProvider interface {
	Status() string
}

// Closer is implemented by screens that hold timers or other resources.
// The router calls Close when the screen leaves the stack.
type Closer interface {
	Close()
}
