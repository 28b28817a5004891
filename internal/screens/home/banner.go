package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/secprep/internal/ui/theme"
)

const bannerArt = `███████╗███████╗ ██████╗██████╗ ██████╗ ███████╗██████╗
██╔════╝██╔════╝██╔════╝██╔══██╗██╔══██╗██╔════╝██╔══██╗
███████╗█████╗  ██║     ██████╔╝██████╔╝█████╗  ██████╔╝
╚════██║██╔══╝  ██║     ██╔═══╝ ██╔══██╗██╔══╝  ██╔═══╝
███████║███████╗╚██████╗██║     ██║  ██║███████╗██║
╚══════╝╚══════╝ ╚═════╝╚═╝     ╚═╝  ╚═╝╚══════╝╚═╝`

const bannerCompact = "S E C P R E P"

// renderBanner returns the banner, or a one-line fallback when the art
// does not fit.
func renderBanner(width int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if compact || width < 60 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
