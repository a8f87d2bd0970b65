package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathemmita/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with the app styling. It is used for
// parent-facing fields (prize names, custom problems); the child's answer
// is typed straight into the game.
type TextInput struct {
	Model    textinput.Model
	Label    string
	errMsg   string
	MaxWidth int
}

// NewTextInput creates a focused text input limited to maxChars characters.
func NewTextInput(label, placeholder string, maxChars int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if maxChars > 0 {
		ti.CharLimit = maxChars
	}
	ti.Focus()
	return TextInput{Model: ti, Label: label, MaxWidth: maxChars}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		t.errMsg = ""
	}
	return t, cmd
}

// View renders the label, the field and any error under it.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.Label != "" {
		view = lipgloss.NewStyle().Foreground(theme.TextDim).Render(t.Label) + " " + view
	}
	if t.errMsg != "" {
		view += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+t.errMsg)
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// Focus focuses the field.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus from the field.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// SetError shows a validation message under the field until the next key.
func (t *TextInput) SetError(msg string) {
	t.errMsg = msg
}
