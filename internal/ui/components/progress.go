package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}
	barWidth := max(p.Width-lipgloss.Width(result)-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	result += lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}
	return result
}

// RewardsBar renders today's points toward the milestones, with each medal
// placed under its threshold.
func RewardsBar(today, width int) string {
	label := fmt.Sprintf("⭐ %d/%d", today, rewards.MaxPoints)
	bar := NewProgressBar(label, rewards.Progress(today), false, width).View()

	barStart := lipgloss.Width(label) + 2
	barWidth := max(width-barStart, 4)

	// Medals are two cells wide and end at their threshold.
	var medals strings.Builder
	pos := 0
	for _, m := range rewards.Milestones() {
		at := max(barStart+barWidth*m.Points/rewards.MaxPoints-2, pos)
		medals.WriteString(strings.Repeat(" ", at-pos))
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if today >= m.Points {
			style = lipgloss.NewStyle().Foreground(theme.MedalColor(m.Level)).Bold(true)
		}
		medals.WriteString(style.Render(m.Medal))
		pos = at + 2
	}
	return bar + "\n" + medals.String()
}
