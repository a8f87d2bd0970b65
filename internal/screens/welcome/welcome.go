package welcome

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/router"
	"github.com/abhisek/mathemmita/internal/screen"
	"github.com/abhisek/mathemmita/internal/ui/theme"
)

const frameInterval = 120 * time.Millisecond

// Animation stages, in frames.
const (
	factsFrame  = 4  // the facts ticker appears
	bannerFrame = 12 // banner, tagline and hint appear
	factFrames  = 6  // frames each fact stays up
)

const mascotArt = `  ╭───────────╮
  │  ┌─────┐  │
  │  │ ◕ ◕ │  │
  │  │  ◡  │  │
  │  ├─────┤  │
  │  │ × ÷ │  │
  │  └─────┘  │
  ╰───────────╯`

// facts cycle under the mascot.
var facts = []string{"7 × 8 = 56", "56 ÷ 7 = 8", "9 × 6 = 54", "81 ÷ 9 = 9", "6 × 7 = 42", "72 ÷ 12 = 6"}

type frameMsg struct{}

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

// WelcomeScreen plays the splash animation until a key is pressed.
type WelcomeScreen struct {
	homeFactory func() screen.Screen
	frame       int
	done        bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that is replaced by the screen homeFactory
// builds.
func New(homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{homeFactory: homeFactory}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return nextFrame() }

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case frameMsg:
		if w.done {
			return w, nil
		}
		w.frame++
		return w, nextFrame()
	case tea.KeyPressMsg:
		return w, w.leave()
	}
	return w, nil
}

// leave swaps in the home screen. Only the first key counts.
func (w *WelcomeScreen) leave() tea.Cmd {
	if w.done {
		return nil
	}
	w.done = true
	home := w.homeFactory()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: home} }
}

// fact returns the times-table fact of the current frame, empty before the
// ticker starts.
func (w *WelcomeScreen) fact() string {
	if w.frame < factsFrame {
		return ""
	}
	return facts[(w.frame-factsFrame)/factFrames%len(facts)]
}

func (w *WelcomeScreen) View(width, height int) string {
	mascot := lipgloss.NewStyle().Foreground(theme.Primary)
	if w.frame%8 >= 6 {
		// blink
		mascot = mascot.Foreground(theme.Accent)
	}
	lines := []string{mascot.Render(mascotArt)}

	if f := w.fact(); f != "" {
		color := theme.MultiplyCard
		if (w.frame-factsFrame)/factFrames%2 == 1 {
			color = theme.DivideCard
		}
		lines = append(lines, "", lipgloss.NewStyle().Foreground(color).Bold(true).Render("✦ "+f+" ✦"))
	}

	if w.frame >= bannerFrame {
		lines = append(lines,
			"",
			RenderBanner(width, height),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("¡Las tablas son un juego!"),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("pulsa cualquier tecla para empezar"),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
