package prizes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/router"
	"github.com/abhisek/mathemmita/internal/screen"
	"github.com/abhisek/mathemmita/internal/ui/components"
	"github.com/abhisek/mathemmita/internal/ui/layout"
	"github.com/abhisek/mathemmita/internal/ui/theme"
)

type prizesLoadedMsg struct {
	Prizes  rewards.Config
	Balance rewards.Balance
	Err     error
}

type prizesSavedMsg struct {
	Prizes rewards.Config
	Err    error
}

// fieldNames maps validation fields to input positions.
var fieldNames = []string{"level1", "level2", "level3"}

// PrizesScreen shows today's milestones and lets a parent name the prizes.
type PrizesScreen struct {
	service *rewards.Service
	userID  string

	prizes  rewards.Config
	balance rewards.Balance
	loaded  bool
	errMsg  string

	editing bool
	inputs  []components.TextInput
	focus   int
	notice  string
}

var _ screen.Screen = (*PrizesScreen)(nil)
var _ screen.KeyHintProvider = (*PrizesScreen)(nil)
var _ screen.EscapeHandler = (*PrizesScreen)(nil)

// New creates a new PrizesScreen.
func New(service *rewards.Service, userID string) *PrizesScreen {
	return &PrizesScreen{service: service, userID: userID}
}

func (s *PrizesScreen) Init() tea.Cmd {
	svc, userID := s.service, s.userID
	return func() tea.Msg {
		ctx := context.Background()
		prizes, err := svc.Prizes(ctx, userID)
		if err != nil {
			return prizesLoadedMsg{Err: err}
		}
		bal, err := svc.Balance(ctx, userID)
		return prizesLoadedMsg{Prizes: prizes, Balance: bal, Err: err}
	}
}

func (s *PrizesScreen) Title() string {
	return "Premios"
}

// HandlesEscape reports whether Esc is consumed to cancel editing.
func (s *PrizesScreen) HandlesEscape() bool {
	return s.editing
}

func (s *PrizesScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		return []layout.KeyHint{
			{Key: "Tab", Description: "Siguiente"},
			{Key: "Enter", Description: "Guardar"},
			{Key: "Esc", Description: "Cancelar"},
		}
	}
	return []layout.KeyHint{
		{Key: "e", Description: "Editar premios"},
		{Key: "Esc", Description: "Volver"},
	}
}

func (s *PrizesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case prizesLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.prizes = msg.Prizes
			s.balance = msg.Balance
		}
		s.loaded = true
		return s, nil

	case prizesSavedMsg:
		return s.handleSaved(msg)

	case tea.KeyMsg:
		if s.editing {
			return s.handleEditKey(msg)
		}
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "e":
			if s.loaded && s.errMsg == "" {
				return s, s.startEditing()
			}
		}
		return s, nil
	}

	if s.editing {
		var cmd tea.Cmd
		s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PrizesScreen) startEditing() tea.Cmd {
	current := []string{s.prizes.Level1, s.prizes.Level2, s.prizes.Level3}
	s.inputs = make([]components.TextInput, len(current))
	for i, m := range rewards.Milestones() {
		in := components.NewTextInput(fmt.Sprintf("%s %d:", m.Medal, m.Points), "helado", rewards.MaxPrizeLength)
		in.SetValue(current[i])
		if i > 0 {
			in.Blur()
		}
		s.inputs[i] = in
	}
	s.focus = 0
	s.editing = true
	s.notice = ""
	return s.inputs[0].Init()
}

func (s *PrizesScreen) setFocus(i int) tea.Cmd {
	s.inputs[s.focus].Blur()
	s.focus = (i + len(s.inputs)) % len(s.inputs)
	return s.inputs[s.focus].Focus()
}

func (s *PrizesScreen) handleEditKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.editing = false
		return s, nil
	case "tab", "down":
		return s, s.setFocus(s.focus + 1)
	case "shift+tab", "up":
		return s, s.setFocus(s.focus - 1)
	case "enter":
		cfg := rewards.Config{
			Level1: s.inputs[0].Value(),
			Level2: s.inputs[1].Value(),
			Level3: s.inputs[2].Value(),
		}
		svc, userID := s.service, s.userID
		return s, func() tea.Msg {
			return prizesSavedMsg{Prizes: cfg, Err: svc.SavePrizes(context.Background(), userID, cfg)}
		}
	}
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

func (s *PrizesScreen) handleSaved(msg prizesSavedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err == nil {
		s.prizes = rewards.Config{
			Level1: strings.TrimSpace(msg.Prizes.Level1),
			Level2: strings.TrimSpace(msg.Prizes.Level2),
			Level3: strings.TrimSpace(msg.Prizes.Level3),
		}
		s.editing = false
		s.notice = "Premios guardados."
		return s, nil
	}

	var verr *rewards.ValidationError
	if errors.As(msg.Err, &verr) && s.editing {
		for i, name := range fieldNames {
			if name == verr.Field {
				s.inputs[i].SetError(verr.Reason)
				return s, s.setFocus(i)
			}
		}
	}
	if s.editing {
		s.inputs[s.focus].SetError("No se pudo guardar.")
	}
	return s, nil
}

func (s *PrizesScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Cargando premios...")
	}

	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).
		Render(fmt.Sprintf("\nHoy: %d puntos   Total: %d\n", s.balance.Today, s.balance.Total)))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.RewardsBar(s.balance.Today, cw)))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	if s.editing {
		var fields []string
		for _, in := range s.inputs {
			fields = append(fields, in.View())
		}
		form := components.Card(strings.Join(fields, "\n\n"), cw, theme.Primary)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, form))
		return b.String()
	}

	for _, m := range rewards.Milestones() {
		unlocked := s.balance.Today >= m.Points
		mark := "⬜"
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if unlocked {
			mark = "✅"
			style = lipgloss.NewStyle().Foreground(theme.MedalColor(m.Level)).Bold(true)
		}
		line := fmt.Sprintf("%s %4d  %s", mark, m.Points, s.prizes.Label(m))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	if next, ok := rewards.Next(s.balance.Today); ok {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(
			fmt.Sprintf("Faltan %d puntos para %s", next.Points-s.balance.Today, s.prizes.Label(next)))))
	}
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Correct.Render(s.notice)))
	}
	return b.String()
}
