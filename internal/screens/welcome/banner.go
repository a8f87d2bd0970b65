package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/ui/theme"
)

const bannerMath = `
 ███╗   ███╗ █████╗ ████████╗██╗  ██╗
 ████╗ ████║██╔══██╗╚══██╔══╝██║  ██║
 ██╔████╔██║███████║   ██║   ███████║
 ██║╚██╔╝██║██╔══██║   ██║   ██╔══██║
 ██║ ╚═╝ ██║██║  ██║   ██║   ██║  ██║
 ╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝`

const bannerEmmita = ` ███████╗███╗   ███╗███╗   ███╗██╗████████╗ █████╗
 ██╔════╝████╗ ████║████╗ ████║██║╚══██╔══╝██╔══██╗
 █████╗  ██╔████╔██║██╔████╔██║██║   ██║   ███████║
 ██╔══╝  ██║╚██╔╝██║██║╚██╔╝██║██║   ██║   ██╔══██║
 ███████╗██║ ╚═╝ ██║██║ ╚═╝ ██║██║   ██║   ██║  ██║
 ╚══════╝╚═╝     ╚═╝╚═╝     ╚═╝╚═╝   ╚═╝   ╚═╝  ╚═╝`

const bannerCompact = "M A T H E M M I T A"

// RenderBanner returns the MATHEMMITA banner: "MATH" in the multiplication
// color over "EMMITA" in the division color. Uses a compact fallback for
// terminals narrower than 54 columns or shorter than 30 rows.
func RenderBanner(width, height int) string {
	if width < 54 || height < 30 {
		return lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Render(bannerCompact)
	}
	math := lipgloss.NewStyle().Foreground(theme.MultiplyCard).Bold(true).Render(bannerMath)
	emmita := lipgloss.NewStyle().Foreground(theme.DivideCard).Bold(true).Render(bannerEmmita)
	return lipgloss.JoinVertical(lipgloss.Center, math, emmita)
}
