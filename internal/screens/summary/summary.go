package summary

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/router"
	"github.com/abhisek/mathemmita/internal/screen"
	"github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/ui/components"
	"github.com/abhisek/mathemmita/internal/ui/layout"
	"github.com/abhisek/mathemmita/internal/ui/theme"
)

// SummaryScreen displays the totals of a finished game.
type SummaryScreen struct {
	summary session.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary session.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Resumen"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continuar"},
		{Key: "Esc", Description: "Inicio"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			// The game screen was replaced by this one, so a single pop
			// returns home.
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	center := func(st lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, st.Render(text))
	}

	secs := int(sum.Duration.Round(time.Second).Seconds())
	lines := []string{
		center(theme.Title, headline(sum)),
		"",
		center(theme.Hint, fmt.Sprintf("Tiempo: %d:%02d", secs/60, secs%60)),
		"",
		center(lipgloss.NewStyle().Foreground(theme.Text),
			fmt.Sprintf("Problemas: %d        Correctas: %d        Acierto: %.0f%%",
				sum.Served, sum.Correct, sum.Accuracy()*100)),
		"",
	}

	var rows []string
	for _, r := range []struct {
		label string
		value int
		color color.Color
	}{
		{"⭐ Puntos ganados", sum.Points, theme.Gold},
		{"🏅 Retos superados", sum.RetriesWon, theme.Accent},
		{"✗ Fallos", sum.Incorrect, theme.Error},
		{"👀 Soluciones vistas", sum.Revealed, theme.Secondary},
	} {
		rows = append(rows, lipgloss.NewStyle().Foreground(r.color).
			Render(fmt.Sprintf("%-22s %4d", r.label, r.value)))
	}
	card := components.Card(strings.Join(rows, "\n"), components.ContentWidth(width), theme.Border)
	lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, card))

	return strings.Join(lines, "\n")
}

func headline(sum session.Summary) string {
	switch {
	case sum.Answered == 0:
		return "¡Hasta la próxima!"
	case sum.Accuracy() >= 0.8:
		return "¡Increíble trabajo!"
	default:
		return "¡Buen trabajo!"
	}
}
