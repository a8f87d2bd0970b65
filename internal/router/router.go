// Package router keeps the stack of screens of the terminal UI.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathemmita/internal/screen"
)

// PushScreenMsg opens a screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg closes the current screen.
type PopScreenMsg struct{}

// ReplaceScreenMsg swaps the current screen, keeping the depth.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// ResumedMsg tells a screen it is on top again because the one above it
// closed.
type ResumedMsg struct{}

// Router is a stack of screens. Only the top one receives messages.
type Router struct {
	stack []screen.Screen
}

// New creates a Router whose bottom screen is initial.
func New(initial screen.Screen) *Router {
	return &Router{stack: []screen.Screen{initial}}
}

// Push opens s and runs its Init.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the top screen and resumes the one below. The bottom screen is
// never popped.
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) < 2 {
		return nil
	}
	r.stack = r.stack[:len(r.stack)-1]
	return r.forward(ResumedMsg{})
}

// Replace swaps the top screen for s and runs its Init.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.stack[len(r.stack)-1] = s
	return s.Init()
}

// Active returns the top screen.
func (r *Router) Active() screen.Screen {
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of open screens.
func (r *Router) Depth() int {
	return len(r.stack)
}

// Update applies navigation messages and forwards anything else to the top
// screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	default:
		return r.forward(msg)
	}
}

func (r *Router) forward(msg tea.Msg) tea.Cmd {
	top := len(r.stack) - 1
	next, cmd := r.stack[top].Update(msg)
	r.stack[top] = next
	return cmd
}

// View renders the top screen.
func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
