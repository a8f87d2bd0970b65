package tricks

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Render formats the trick for a terminal of the given width.
func Render(t Trick, width int, withAnswer bool) (string, error) {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(t.Markdown(withAnswer))
	if err != nil {
		return "", fmt.Errorf("render trick: %w", err)
	}
	return out, nil
}
