package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathemmita/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeHandler is implemented by screens that handle Esc themselves
// instead of being popped.
type EscapeHandler interface {
	HandlesEscape() bool
}

// PointsMsg reports the player's points so the header can show them.
type PointsMsg layout.Points

// Points returns a command that reports points to the app.
func Points(today, total int) tea.Cmd {
	return func() tea.Msg { return PointsMsg{Today: today, Total: total} }
}
