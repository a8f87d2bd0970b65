package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathemmita/internal/router"
	"github.com/abhisek/mathemmita/internal/session"
)

func testSummary() session.Summary {
	return session.Summary{
		Duration:   12*time.Minute + 5*time.Second,
		Served:     14,
		Answered:   13,
		Correct:    11,
		Incorrect:  2,
		RetriesWon: 1,
		Revealed:   1,
		Points:     125,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testSummary())
	if s.Title() != "Resumen" {
		t.Errorf("Title = %q, want %q", s.Title(), "Resumen")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(testSummary())
	view := s.View(80, 24)
	for _, want := range []string{"12:05", "Problemas: 14", "Correctas: 11", "Acierto: 85%", "125", "¡Increíble trabajo!"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestSummaryScreen_EmptyGame(t *testing.T) {
	view := New(session.Summary{}).View(80, 24)
	if !strings.Contains(view, "¡Hasta la próxima!") {
		t.Errorf("unexpected headline:\n%s", view)
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, code := range []rune{tea.KeyEnter, tea.KeyEscape} {
		s := New(testSummary())
		_, cmd := s.Update(tea.KeyPressMsg{Code: code})
		if cmd == nil {
			t.Fatalf("expected a command on key %v", code)
		}
		if _, ok := cmd().(router.PopScreenMsg); !ok {
			t.Errorf("key %v: expected PopScreenMsg", code)
		}
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testSummary())
	hints := s.KeyHints()
	if len(hints) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(hints))
	}
}
