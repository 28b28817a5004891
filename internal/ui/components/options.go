package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/secprep/internal/ui/theme"
)

// OptionList renders the answer options of one question. Cursor is the
// highlighted row, Chosen the recorded answer (-1 for none). When Reveal
// is set the correct option and a wrong choice are colored.
type OptionList struct {
	Options []string
	Cursor  int
	Chosen  int
	Correct int
	Reveal  bool
}

// NewOptionList creates an option list with the cursor on the chosen
// option, or the first one when nothing is chosen.
func NewOptionList(options []string, chosen int) OptionList {
	cursor := 0
	if chosen >= 0 && chosen < len(options) {
		cursor = chosen
	}
	return OptionList{Options: options, Cursor: cursor, Chosen: chosen, Correct: -1}
}

// Up moves the cursor up, stopping at the first option.
func (o *OptionList) Up() {
	if o.Cursor > 0 {
		o.Cursor--
	}
}

// Down moves the cursor down, stopping at the last option.
func (o *OptionList) Down() {
	if o.Cursor < len(o.Options)-1 {
		o.Cursor++
	}
}

// Label returns the letter shown next to option i.
func Label(i int) string {
	return string(rune('A' + i))
}

// View renders the options wrapped to width.
func (o OptionList) View(width int) string {
	var b strings.Builder
	for i, opt := range o.Options {
		prefix := "  "
		if i == o.Cursor && !o.Reveal {
			prefix = "▸ "
		}
		mark := "○"
		if i == o.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s) %s", prefix, mark, Label(i), opt)

		style := theme.Unselected
		switch {
		case o.Reveal && i == o.Correct:
			style = theme.Correct
		case o.Reveal && i == o.Chosen:
			style = theme.Incorrect
		case o.Reveal:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == o.Chosen:
			style = theme.Chosen
		case i == o.Cursor:
			style = theme.Selected
		}
		if width > 0 {
			style = style.Width(width)
		}
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}
