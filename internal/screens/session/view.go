package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/rewards"
	sess "github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/tricks"
	"github.com/abhisek/mathemmita/internal/ui/components"
	"github.com/abhisek/mathemmita/internal/ui/theme"
)

// renderProblem renders the problem card, the feedback line and the
// rewards bar.
func (s *SessionScreen) renderProblem(width int) string {
	cw := components.ContentWidth(width)
	p := s.game.Problem()
	phase := s.game.Phase()

	var b strings.Builder

	info := fmt.Sprintf("Nivel %d", s.game.Level())
	if p.IsRetry {
		info += "   " + lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("🔁 ¡Otra vez este reto!")
	}
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim).Render(info)))
	b.WriteString("\n\n")

	answer := s.game.Input()
	if answer == "" && phase.AcceptsInput() {
		answer = "_"
	}
	question := lipgloss.NewStyle().Bold(true).Foreground(theme.Text).
		Render(fmt.Sprintf("%s = %s", p.Text, answer))
	card := components.Card(question, cw, theme.CardColor(string(p.Theme)))
	b.WriteString(center(width, card))
	b.WriteString("\n\n")

	if phase == sess.PhaseVictory && s.last != nil {
		b.WriteString(s.renderVictory(width))
	} else if line := s.feedbackLine(); line != "" {
		b.WriteString(center(width, line))
	}
	b.WriteString("\n\n")

	b.WriteString(center(width, components.RewardsBar(s.today, cw)))
	return b.String()
}

func (s *SessionScreen) feedbackLine() string {
	if s.last == nil {
		return ""
	}
	switch s.last.Outcome {
	case sess.OutcomeCorrect:
		msg := s.last.Message
		if s.last.Points > 0 {
			msg += fmt.Sprintf("  +%d", s.last.Points)
		}
		lines := []string{theme.Correct.Render(msg)}
		if s.last.Award != nil {
			for _, m := range s.last.Award.Unlocked {
				lines = append(lines, s.unlockedLine(m))
			}
		}
		return lipgloss.JoinVertical(lipgloss.Center, lines...)
	case sess.OutcomeIncorrect:
		return theme.Incorrect.Render(s.last.Message)
	case sess.OutcomeRevealed:
		return lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("👀 " + s.last.Message)
	}
	return ""
}

// renderVictory renders the medal shown after a failed problem is finally
// answered, plus any prize unlocked with it.
func (s *SessionScreen) renderVictory(width int) string {
	res := s.last
	var b strings.Builder

	medal := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Gold).
		Foreground(theme.Gold).
		Bold(true).
		Padding(0, 2).
		Render("🏅 " + res.Message)
	b.WriteString(center(width, medal))

	if res.Points > 0 {
		b.WriteString("\n")
		b.WriteString(center(width, theme.Correct.Render(fmt.Sprintf("+%d puntos", res.Points))))
	}
	if res.Award != nil {
		for _, m := range res.Award.Unlocked {
			b.WriteString("\n")
			b.WriteString(center(width, s.unlockedLine(m)))
		}
	}
	return b.String()
}

func (s *SessionScreen) unlockedLine(m rewards.Milestone) string {
	return lipgloss.NewStyle().Foreground(theme.MedalColor(m.Level)).Bold(true).
		Render("¡Premio desbloqueado! " + s.prizes.Label(m))
}

// renderTrick renders the trick panel.
func (s *SessionScreen) renderTrick(width int) string {
	var body string
	switch {
	case s.trickLoading:
		body = theme.Hint.Render("Pensando un truco...")
	case s.trickErr != "":
		body = lipgloss.NewStyle().Foreground(theme.Error).Render(s.trickErr)
	default:
		body = s.trickText
	}
	title := theme.Title.Render("Truco") + "\n" + theme.Subtitle.Render(tricks.Subtitle)
	return center(width, title) + "\n\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, body)
}

// renderCustom renders the field where a parent types a problem.
func (s *SessionScreen) renderCustom(width int) string {
	cw := components.ContentWidth(width)
	content := theme.Title.Render("Nuevo problema") + "\n\n" +
		s.custom.View() + "\n\n" +
		theme.Hint.Render("Multiplicación (7 x 8) o división exacta (56 / 7)")
	return "\n" + center(width, components.Card(content, cw, theme.Primary))
}

// renderLoading renders the loading state.
func renderLoading(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Preparando el juego...")
}

func center(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
