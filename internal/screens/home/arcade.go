package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/ui/components"
	"github.com/abhisek/mathemmita/internal/ui/theme"
)

const arcadeTitle = "M · A · T · H · E · M · M · I · T · A"

// renderTitle returns the styled title with the child's greeting.
func renderTitle(name string, cw int) string {
	title := lipgloss.NewStyle().
		Foreground(theme.Gold).
		Bold(true).
		Render(arcadeTitle)
	greeting := lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(fmt.Sprintf("¡Hola, %s!", name))
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(title + "\n" + greeting)
}

// renderStatsBar renders today's points, the lifetime total and the next
// prize in a bordered box matching content width.
func renderStatsBar(today, total int, prizes rewards.Config, cw int, compact bool) string {
	todayStyle := lipgloss.NewStyle().Foreground(theme.Gold).Bold(true)
	totalStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	nextStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var next string
	if m, ok := rewards.Next(today); ok {
		next = nextStyle.Render(fmt.Sprintf("%s %d", m.Medal, m.Points-today))
		if !compact {
			next = nextStyle.Render(fmt.Sprintf("%s FALTAN %d", prizes.Label(m), m.Points-today))
		}
	} else {
		next = nextStyle.Render("🏆 ¡TODOS!")
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			todayStyle.Render(fmt.Sprintf("⭐%d", today)),
			totalStyle.Render(fmt.Sprintf("🏆%d", total)),
			next,
		)
	} else {
		stats = fmt.Sprintf("%s  %s\n%s",
			todayStyle.Render(fmt.Sprintf("⭐ %d HOY", today)),
			totalStyle.Render(fmt.Sprintf("🏆 %d EN TOTAL", total)),
			next,
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// numbered prefixes each label with its shortcut digit.
func numbered(items []string) []string {
	out := make([]string, len(items))
	for i, label := range items {
		out[i] = fmt.Sprintf("%d  %s", i+1, label)
	}
	return out
}

// renderArcadeMenu renders each menu item as a bordered button.
func renderArcadeMenu(items []string, selected int, cw int, disabled map[int]bool) string {
	off := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	buttons := make([]string, 0, len(items))
	for i, label := range numbered(items) {
		if disabled[i] {
			buttons = append(buttons, off.Render(label))
		} else {
			buttons = append(buttons, components.MenuButton(label, i == selected, buttonWidth))
		}
	}
	return lipgloss.PlaceHorizontal(cw, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, buttons...))
}

// renderArcadeMenuCompact renders one line per item, for terminals too
// short for bordered buttons.
func renderArcadeMenuCompact(items []string, selected int, cw int, disabled map[int]bool) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	normal := lipgloss.NewStyle().Foreground(theme.Text)
	active := lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Gold).Bold(true)

	lines := make([]string, 0, len(items))
	for i, label := range numbered(items) {
		switch {
		case disabled[i]:
			lines = append(lines, dim.Render("   "+label+" "))
		case i == selected:
			lines = append(lines, active.Render(" ▸ "+label+" "))
		default:
			lines = append(lines, normal.Render("   "+label+" "))
		}
	}
	return lipgloss.PlaceHorizontal(cw, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
