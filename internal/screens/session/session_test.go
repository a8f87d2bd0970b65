package session

import (
	"context"
	"strconv"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/router"
	"github.com/abhisek/mathemmita/internal/screen"
	"github.com/abhisek/mathemmita/internal/screens/summary"
	sess "github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/tutor"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// startScreen builds a play screen and runs its init flow.
func startScreen(t *testing.T, deps Deps) *SessionScreen {
	t.Helper()
	s := New(deps)
	msg := s.Init()()
	if _, ok := msg.(sessionInitMsg); !ok {
		t.Fatalf("Init produced %T, want sessionInitMsg", msg)
	}
	s.Update(msg)
	if !s.ready {
		t.Fatal("screen not ready after init")
	}
	return s
}

func anonymousGame() *sess.Game {
	return sess.New(sess.Options{Rand: problemgen.NewSeededRand(7)})
}

func typeAnswer(s *SessionScreen, answer string) {
	for _, r := range answer {
		s.Update(keyPress(r))
	}
}

func TestInit_PresentsProblem(t *testing.T) {
	s := startScreen(t, Deps{Game: anonymousGame()})

	if s.game.Phase() != sess.PhasePresented {
		t.Errorf("phase = %v, want presented", s.game.Phase())
	}
	view := s.View(80, 24)
	if !strings.Contains(view, s.game.Problem().Text) {
		t.Errorf("view does not show the problem:\n%s", view)
	}
}

func TestCorrectAnswer_AdvancesAfterFeedback(t *testing.T) {
	s := startScreen(t, Deps{Game: anonymousGame()})
	first := s.game.Problem()

	typeAnswer(s, strconv.Itoa(first.Answer))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected points and delay commands")
	}
	if s.game.Phase() != sess.PhaseCorrect {
		t.Fatalf("phase = %v, want correct", s.game.Phase())
	}
	if s.today != 10 || s.total != 10 {
		t.Errorf("points = %d/%d, want 10/10", s.today, s.total)
	}
	if !strings.Contains(s.View(80, 24), "¡Correcto!") {
		t.Error("praise not shown")
	}

	// A stale tick from an earlier round is ignored.
	s.Update(feedbackDoneMsg{Round: s.round - 1})
	if s.game.Phase() != sess.PhaseCorrect {
		t.Error("stale feedback tick advanced the round")
	}

	s.Update(feedbackDoneMsg{Round: s.round})
	if s.game.Phase() != sess.PhasePresented {
		t.Errorf("phase = %v, want presented", s.game.Phase())
	}
	if s.game.Summary().Served != 2 {
		t.Errorf("served = %d, want 2", s.game.Summary().Served)
	}
}

func TestIncorrectAnswer_ClearsForRetry(t *testing.T) {
	s := startScreen(t, Deps{Game: anonymousGame()})
	p := s.game.Problem()

	typeAnswer(s, strconv.Itoa(p.Answer+1))
	s.Update(specialKey(tea.KeyEnter))
	if s.game.Phase() != sess.PhaseIncorrect {
		t.Fatalf("phase = %v, want incorrect", s.game.Phase())
	}
	if !strings.Contains(s.View(80, 24), "intenta de nuevo") {
		t.Errorf("try-again message missing:\n%s", s.View(80, 24))
	}

	s.Update(retryMsg{Round: s.round})
	if s.game.Phase() != sess.PhasePresented || s.game.Input() != "" {
		t.Errorf("phase=%v input=%q, want presented and empty", s.game.Phase(), s.game.Input())
	}
	if s.game.Problem() != p {
		t.Error("the same problem should stay after a miss")
	}
}

func TestTypingAfterMissStartsFresh(t *testing.T) {
	s := startScreen(t, Deps{Game: anonymousGame()})
	p := s.game.Problem()

	typeAnswer(s, strconv.Itoa(p.Answer+1))
	s.Update(specialKey(tea.KeyEnter))
	typeAnswer(s, strconv.Itoa(p.Answer))
	if s.game.Input() != strconv.Itoa(p.Answer) {
		t.Errorf("input = %q, want %d", s.game.Input(), p.Answer)
	}
	s.Update(specialKey(tea.KeyEnter))
	if s.game.Phase() != sess.PhaseCorrect {
		t.Errorf("phase = %v, want correct", s.game.Phase())
	}
}

func TestReveal(t *testing.T) {
	s := startScreen(t, Deps{Game: anonymousGame()})
	p := s.game.Problem()

	s.Update(keyPress('s'))
	if s.game.Phase() != sess.PhaseRevealed {
		t.Fatalf("phase = %v, want revealed", s.game.Phase())
	}
	if !strings.Contains(s.View(80, 24), "La respuesta es "+strconv.Itoa(p.Answer)) {
		t.Error("answer not shown")
	}
	if s.today != 0 {
		t.Errorf("reveal earned points: %d", s.today)
	}

	// Digits are ignored until the next problem.
	s.Update(keyPress('1'))
	if s.game.Input() != strconv.Itoa(p.Answer) {
		t.Errorf("input = %q", s.game.Input())
	}
	s.Update(specialKey(tea.KeyEnter))
	if s.game.Phase() != sess.PhasePresented {
		t.Errorf("phase = %v, want presented", s.game.Phase())
	}
}

func TestTrick_RendersAsync(t *testing.T) {
	g := anonymousGame()
	s := startScreen(t, Deps{Game: g})
	if _, err := g.Custom(context.Background(), "9 x 7"); err != nil {
		t.Fatal(err)
	}
	s.startRound()

	_, cmd := s.Update(keyPress('?'))
	if cmd == nil || !s.showingTrick || !s.trickLoading {
		t.Fatal("expected the trick panel to open and load")
	}
	if !strings.Contains(s.View(80, 24), "Pensando") {
		t.Error("loading text missing")
	}

	s.Update(cmd())
	if s.trickLoading || s.trickText == "" {
		t.Fatalf("trick not rendered: err=%q", s.trickErr)
	}
	if strings.Contains(s.trickText, "63!") {
		t.Error("trick shown before answering must hide the answer")
	}

	// s inside the trick reveals the solution.
	s.Update(keyPress('s'))
	if s.showingTrick || s.game.Phase() != sess.PhaseRevealed {
		t.Errorf("showing=%v phase=%v", s.showingTrick, s.game.Phase())
	}
}

func TestCustomProblem(t *testing.T) {
	s := startScreen(t, Deps{Game: anonymousGame()})

	s.Update(keyPress('p'))
	if !s.customActive {
		t.Fatal("custom field not opened")
	}
	for _, r := range "7/2" {
		s.Update(keyPress(r))
	}
	s.Update(specialKey(tea.KeyEnter))
	if !s.customActive {
		t.Fatal("inexact division should keep the field open")
	}
	if !strings.Contains(s.View(80, 24), "exacta") {
		t.Errorf("error not shown:\n%s", s.View(80, 24))
	}

	s.custom.SetValue("56 ÷ 7")
	s.Update(specialKey(tea.KeyEnter))
	if s.customActive {
		t.Fatal("field should close on a valid problem")
	}
	if got := s.game.Problem(); got.Text != "56 ÷ 7" || got.Answer != 8 {
		t.Errorf("problem = %+v", got)
	}
}

func TestHardWon_ShowsMedalAndUnlock(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	attempts, profiles := st.AttemptRepo(), st.ProfileRepo()

	if err := attempts.Append(ctx, store.AttemptData{
		UserID: "emma", Operand1: 7, Operand2: 8, Operator: "×", Answer: 56,
		DisplayText: "7 × 8", Theme: "orange",
	}); err != nil {
		t.Fatal(err)
	}
	svc := rewards.NewService(profiles, rewards.Points{}, nil)
	if err := svc.SavePrizes(ctx, "emma", rewards.Config{Level1: "helado", Level2: "cine", Level3: "parque"}); err != nil {
		t.Fatal(err)
	}
	if _, err := profiles.AddPoints(ctx, "emma", 990, svc.Day()); err != nil {
		t.Fatal(err)
	}

	cfg := tutor.DefaultConfig()
	cfg.RepeatProbability = 1
	g := sess.New(sess.Options{
		UserID:   "emma",
		Selector: tutor.NewSelector(attempts, tutor.WithConfig(cfg)),
		Attempts: attempts,
		Rewards:  svc,
		Rand:     problemgen.NewSeededRand(1),
	})
	s := startScreen(t, Deps{Game: g, Rewards: svc, Snapshots: st.SnapshotRepo()})
	if s.today != 990 {
		t.Fatalf("today = %d, want 990", s.today)
	}
	if !s.game.Problem().IsRetry {
		t.Fatalf("expected the pending failure, got %+v", s.game.Problem())
	}
	if !strings.Contains(s.View(80, 24), "Otra vez") {
		t.Error("retry badge missing")
	}

	typeAnswer(s, "56")
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if s.game.Phase() != sess.PhaseVictory {
		t.Fatalf("phase = %v, want victory", s.game.Phase())
	}
	if msg, ok := cmd().(screen.PointsMsg); !ok || msg.Today != 1015 {
		t.Errorf("points msg = %#v", msg)
	}
	view := s.View(80, 24)
	for _, want := range []string{"🏅", "+25 puntos", "🥉 helado"} {
		if !strings.Contains(view, want) {
			t.Errorf("victory view missing %q:\n%s", want, view)
		}
	}
}

func TestEscape_EndsWithSummary(t *testing.T) {
	st := openStore(t)
	g := sess.New(sess.Options{UserID: "emma", Rand: problemgen.NewSeededRand(3)})
	s := startScreen(t, Deps{Game: g, Snapshots: st.SnapshotRepo()})

	if !s.HandlesEscape() {
		t.Fatal("play screen should handle Esc")
	}
	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected end command")
	}
	_, cmd = s.Update(cmd())
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("replacement = %T, want summary", msg.Screen)
	}

	snap, err := st.SnapshotRepo().Latest(context.Background(), "emma")
	if err != nil || snap == nil {
		t.Fatalf("snapshot not saved: %v", err)
	}
}

func TestKeyHints(t *testing.T) {
	s := startScreen(t, Deps{Game: anonymousGame()})
	if hints := s.KeyHints(); len(hints) == 0 || hints[0].Description != "Comprobar" {
		t.Errorf("hints = %+v", hints)
	}
	s.Update(keyPress('s'))
	if hints := s.KeyHints(); hints[0].Description != "Siguiente" {
		t.Errorf("hints after reveal = %+v", hints)
	}
}
