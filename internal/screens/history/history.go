package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/router"
	"github.com/abhisek/mathemmita/internal/screen"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/ui/layout"
	"github.com/abhisek/mathemmita/internal/ui/theme"
)

// pageSize is how many recent attempts the screen loads.
const pageSize = 50

type historyLoadedMsg struct {
	Attempts []store.AttemptRecord
	Stats    *store.AttemptStats
	Err      error
}

// entry is one attempt as listed on screen.
type entry struct {
	store.AttemptRecord

	// Pending marks a failure not answered correctly since; it may come back
	// as a retry.
	Pending bool
}

// HistoryScreen lists the player's recent answers.
type HistoryScreen struct {
	attempts store.AttemptRepo
	userID   string

	entries  []entry
	stats    *store.AttemptStats
	selected int
	onlyMiss bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(attempts store.AttemptRepo, userID string) *HistoryScreen {
	return &HistoryScreen{attempts: attempts, userID: userID}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, userID := s.attempts, s.userID
	return func() tea.Msg {
		ctx := context.Background()

		recs, err := repo.Query(ctx, userID, store.QueryOpts{Limit: pageSize})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		stats, err := repo.Stats(ctx, userID)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Attempts: recs, Stats: stats}
	}
}

func (s *HistoryScreen) Title() string {
	return "Historial"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	filter := "Solo fallos"
	if s.onlyMiss {
		filter = "Todo"
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Mover"},
		{Key: "f", Description: filter},
		{Key: "Esc", Description: "Volver"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.entries = markPending(msg.Attempts)
			s.stats = msg.Stats
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.visible())-1 {
				s.selected++
			}
			return s, nil
		case "f":
			s.onlyMiss = !s.onlyMiss
			s.selected = 0
			return s, nil
		}
	}
	return s, nil
}

// markPending flags failures with no newer correct answer to the same
// problem. Records are newest first.
func markPending(recs []store.AttemptRecord) []entry {
	solved := make(map[string]bool)
	out := make([]entry, 0, len(recs))
	for _, r := range recs {
		e := entry{AttemptRecord: r}
		if r.Correct {
			solved[r.DisplayText] = true
		} else {
			e.Pending = !solved[r.DisplayText]
		}
		out = append(out, e)
	}
	return out
}

func (s *HistoryScreen) visible() []entry {
	if !s.onlyMiss {
		return s.entries
	}
	var out []entry
	for _, e := range s.entries {
		if !e.Correct {
			out = append(out, e)
		}
	}
	return out
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Cargando historial...")
	}
	if len(s.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Todavía no hay respuestas. ¡A jugar!")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderStats()))
	b.WriteString("\n\n")

	rows := s.visible()
	// Keep the selection in view.
	maxRows := max(height-6, 3)
	start := 0
	if s.selected >= maxRows {
		start = s.selected - maxRows + 1
	}
	end := min(start+maxRows, len(rows))

	for i := start; i < end; i++ {
		e := rows[i]
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		mark := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		if !e.Correct {
			mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
		line := fmt.Sprintf("%s%s  %-12s = %-4d %s",
			prefix, e.Timestamp.Local().Format("02/01 15:04"), e.DisplayText, e.Answer, mark)
		if e.Pending {
			line += " 🔁"
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *HistoryScreen) renderStats() string {
	st := s.stats
	if st == nil || st.Total == 0 {
		return ""
	}
	parts := []string{
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
			Render(fmt.Sprintf("%d respuestas, %d correctas", st.Total, st.Correct)),
	}
	for _, op := range st.ByOperator {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.CardColor(string(problemgen.ThemeFor(problemgen.Operator(op.Operator))))).
			Render(fmt.Sprintf("%s %.0f%%", op.Operator, op.Accuracy()*100)))
	}
	return strings.Join(parts, "   ")
}
