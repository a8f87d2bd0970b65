// Package layout draws the frame around every screen: the header with the
// player's points and the footer with key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/ui/theme"
)

// Smallest terminal the game draws in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Points is the score shown in the header.
type Points struct {
	Today int
	Total int
}

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks for a bigger terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf(
			"¡La ventana es muy pequeña!\n\nHazla de al menos\n%d x %d\n\nAhora: %d x %d",
			MinWidth, MinHeight, width, height,
		))
}

// RenderHeader shows the app name on the left, the screen title centered and
// the points on the right.
func RenderHeader(title string, points Points, width int) string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Mathemmita")
	heading := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	score := lipgloss.NewStyle().Foreground(theme.Gold).Render(fmt.Sprintf("⭐ %d hoy", points.Today)) +
		"   " +
		lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("🏆 %d", points.Total))

	inner := max(width-4, 0)
	nw, hw, sw := lipgloss.Width(name), lipgloss.Width(heading), lipgloss.Width(score)
	gapL := max((inner-hw)/2-nw, 1)
	gapR := max(inner-nw-gapL-hw-sw, 1)

	return bar(name+strings.Repeat(" ", gapL)+heading+strings.Repeat(" ", gapR)+score, width)
}

// RenderFooter lists the key hints.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return bar("  "+strings.Join(parts, "   "), width)
}

// RenderFrame stacks header, content and footer, giving the content all the
// height the bars leave.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).Render(content),
		footer,
	)
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}
