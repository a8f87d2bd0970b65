package session

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/router"
	"github.com/abhisek/mathemmita/internal/screen"
	"github.com/abhisek/mathemmita/internal/screens/summary"
	sess "github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/tricks"
	"github.com/abhisek/mathemmita/internal/ui/components"
	"github.com/abhisek/mathemmita/internal/ui/layout"
)

const (
	correctDelay   = 1200 * time.Millisecond
	incorrectDelay = 1500 * time.Millisecond
)

// Deps are the collaborators of the play screen. Only Game is required.
type Deps struct {
	Game      *sess.Game
	Rewards   *rewards.Service
	Snapshots store.SnapshotRepo
	Explainer *tricks.Explainer
	Logger    *zap.Logger
}

// SessionScreen implements screen.Screen for the active game.
type SessionScreen struct {
	game      *sess.Game
	rewards   *rewards.Service
	snapshots store.SnapshotRepo
	explainer *tricks.Explainer
	logger    *zap.Logger

	ready  bool
	round  int
	last   *sess.Result
	today  int
	total  int
	prizes rewards.Config

	showingTrick bool
	trickLoading bool
	trickText    string
	trickErr     string

	custom       components.TextInput
	customActive bool

	width int
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.EscapeHandler = (*SessionScreen)(nil)

// New creates the play screen for a game.
func New(deps Deps) *SessionScreen {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &SessionScreen{
		game:      deps.Game,
		rewards:   deps.Rewards,
		snapshots: deps.Snapshots,
		explainer: deps.Explainer,
		logger:    deps.Logger,
		width:     60,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	return s.initSession()
}

func (s *SessionScreen) Title() string {
	return "A jugar"
}

// HandlesEscape reports that Esc ends the game here instead of popping.
func (s *SessionScreen) HandlesEscape() bool {
	return true
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case !s.ready:
		return nil
	case s.customActive:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Usar"},
			{Key: "Esc", Description: "Cancelar"},
		}
	case s.showingTrick:
		hints := []layout.KeyHint{{Key: "any key", Description: "Volver"}}
		if s.game.Phase().AcceptsInput() {
			hints = append(hints, layout.KeyHint{Key: "s", Description: "Solución"})
		}
		return hints
	}

	switch s.game.Phase() {
	case sess.PhasePresented, sess.PhaseIncorrect:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Comprobar"},
			{Key: "?", Description: "Truco"},
			{Key: "s", Description: "Solución"},
			{Key: "p", Description: "Problema"},
			{Key: "Esc", Description: "Terminar"},
		}
	case sess.PhaseCorrect:
		return []layout.KeyHint{{Key: "any key", Description: "Siguiente"}}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Siguiente"},
			{Key: "?", Description: "Truco"},
			{Key: "Esc", Description: "Terminar"},
		}
	}
}

func (s *SessionScreen) View(width, height int) string {
	s.width = width
	if !s.ready {
		return renderLoading(width)
	}
	if s.customActive {
		return s.renderCustom(width)
	}
	if s.showingTrick {
		return s.renderTrick(width)
	}
	return s.renderProblem(width)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionInitMsg:
		return s.handleInit(msg)

	case feedbackDoneMsg:
		if msg.Round != s.round || s.game.Phase() != sess.PhaseCorrect {
			return s, nil
		}
		return s, s.next()

	case retryMsg:
		if msg.Round == s.round && s.game.Phase() == sess.PhaseIncorrect {
			s.game.ResetInput()
			s.last = nil
		}
		return s, nil

	case trickReadyMsg:
		return s.handleTrickReady(msg)

	case sessionEndMsg:
		return s.handleSessionEnd()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.customActive {
		var cmd tea.Cmd
		s.custom, cmd = s.custom.Update(msg)
		return s, cmd
	}
	return s, nil
}

// initSession loads the player's points and prize names.
func (s *SessionScreen) initSession() tea.Cmd {
	svc, userID := s.rewards, s.game.UserID()
	return func() tea.Msg {
		if svc == nil || userID == "" {
			return sessionInitMsg{}
		}
		ctx := context.Background()
		bal, err := svc.Balance(ctx, userID)
		if err != nil {
			return sessionInitMsg{Err: err}
		}
		prizes, err := svc.Prizes(ctx, userID)
		return sessionInitMsg{Balance: bal, Prizes: prizes, Err: err}
	}
}

func (s *SessionScreen) handleInit(msg sessionInitMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		// Play goes on with a zero balance.
		s.logger.Warn("load rewards", zap.String("user_id", s.game.UserID()), zap.Error(msg.Err))
	}
	s.today, s.total = msg.Balance.Today, msg.Balance.Total
	s.prizes = msg.Prizes
	s.ready = true
	return s, tea.Batch(s.next(), screen.Points(s.today, s.total))
}

// next presents a new problem.
func (s *SessionScreen) next() tea.Cmd {
	s.game.Next(context.Background())
	s.startRound()
	return nil
}

func (s *SessionScreen) startRound() {
	s.round++
	s.last = nil
	s.showingTrick = false
	s.trickText, s.trickErr = "", ""
	s.trickLoading = false
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if !s.ready {
		if key == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	if s.customActive {
		switch key {
		case "esc":
			s.customActive = false
			return s, nil
		case "enter":
			return s.submitCustom()
		}
		var cmd tea.Cmd
		s.custom, cmd = s.custom.Update(msg)
		return s, cmd
	}

	if s.showingTrick {
		if key == "s" && s.game.Phase().AcceptsInput() {
			s.showingTrick = false
			return s.reveal()
		}
		s.showingTrick = false
		return s, nil
	}

	if key == "esc" {
		return s, func() tea.Msg { return sessionEndMsg{} }
	}

	switch s.game.Phase() {
	case sess.PhasePresented, sess.PhaseIncorrect:
		return s.handleAnswerKey(key)

	case sess.PhaseCorrect:
		// Any key skips the pause.
		return s, s.next()

	case sess.PhaseRevealed, sess.PhaseVictory:
		switch key {
		case "?":
			return s, s.showTrick()
		case "enter", "space", "n":
			return s, s.next()
		}
	}
	return s, nil
}

func (s *SessionScreen) handleAnswerKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "enter":
		return s.submitAnswer()
	case "backspace":
		if s.game.Phase() == sess.PhaseIncorrect {
			s.game.ResetInput()
			s.last = nil
		}
		s.game.Backspace()
		return s, nil
	case "?":
		return s, s.showTrick()
	case "s":
		return s.reveal()
	case "p":
		s.custom = components.NewTextInput("Problema:", "7 x 8", 12)
		s.customActive = true
		return s, s.custom.Init()
	}

	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		// Typing after a miss starts a fresh attempt.
		if s.game.Phase() == sess.PhaseIncorrect {
			s.game.ResetInput()
			s.last = nil
		}
		s.game.Type(key[0])
	}
	return s, nil
}

func (s *SessionScreen) submitAnswer() (screen.Screen, tea.Cmd) {
	res := s.game.Submit(context.Background())
	if res == nil {
		return s, nil
	}
	s.last = res
	round := s.round

	switch res.Outcome {
	case sess.OutcomeIncorrect:
		return s, tea.Tick(incorrectDelay, func(time.Time) tea.Msg { return retryMsg{Round: round} })
	case sess.OutcomeCorrect:
		s.credit(res)
		if res.LevelChanged {
			s.saveSnapshot()
		}
		return s, tea.Batch(
			screen.Points(s.today, s.total),
			tea.Tick(correctDelay, func(time.Time) tea.Msg { return feedbackDoneMsg{Round: round} }),
		)
	default:
		s.credit(res)
		return s, screen.Points(s.today, s.total)
	}
}

// credit updates the shown points. Stored profiles report their balance;
// anonymous play counts locally.
func (s *SessionScreen) credit(res *sess.Result) {
	if res.Award != nil {
		s.today, s.total = res.Award.Today, res.Award.Total
		return
	}
	s.today += res.Points
	s.total += res.Points
}

func (s *SessionScreen) reveal() (screen.Screen, tea.Cmd) {
	if res := s.game.Reveal(context.Background()); res != nil {
		s.last = res
		// A trick shown from now on includes the answer.
		s.trickText = ""
	}
	return s, nil
}

func (s *SessionScreen) submitCustom() (screen.Screen, tea.Cmd) {
	if _, err := s.game.Custom(context.Background(), s.custom.Value()); err != nil {
		msg := "Escribe algo como 7 x 8 o 42 / 6."
		switch {
		case errors.Is(err, problemgen.ErrInexactDivision):
			msg = "La división debe ser exacta."
		case errors.Is(err, problemgen.ErrOutOfRange):
			msg = "Usa números de 1 a 999 y un resultado de hasta 4 cifras."
		}
		s.custom.SetError(msg)
		return s, nil
	}
	s.customActive = false
	s.startRound()
	return s, nil
}

// showTrick opens the trick panel and renders the trick in the background.
func (s *SessionScreen) showTrick() tea.Cmd {
	s.showingTrick = true
	if s.trickText != "" || s.trickLoading {
		return nil
	}
	s.trickLoading = true
	s.trickErr = ""

	explainer, p, name := s.explainer, s.game.Problem(), s.game.ChildName()
	width, round := max(s.width-8, 20), s.round
	withAnswer := !s.game.Phase().AcceptsInput()
	return func() tea.Msg {
		t := explainer.Explain(context.Background(), p, name)
		text, err := tricks.Render(t, width, withAnswer)
		return trickReadyMsg{Round: round, Text: text, Err: err}
	}
}

func (s *SessionScreen) handleTrickReady(msg trickReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Round != s.round {
		return s, nil
	}
	s.trickLoading = false
	if msg.Err != nil {
		s.logger.Warn("render trick", zap.Error(msg.Err))
		s.trickErr = "No pude preparar el truco."
		return s, nil
	}
	s.trickText = msg.Text
	return s, nil
}

func (s *SessionScreen) handleSessionEnd() (screen.Screen, tea.Cmd) {
	s.saveSnapshot()
	s.game.Close()
	summ := s.game.Summary()
	s.logger.Info("game ended",
		zap.String("user_id", s.game.UserID()),
		zap.Int("served", summ.Served),
		zap.Int("correct", summ.Correct),
		zap.Int("points", summ.Points),
		zap.Duration("duration", summ.Duration))

	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(summ)}
	}
}

func (s *SessionScreen) saveSnapshot() {
	if err := sess.SaveSnapshot(context.Background(), s.snapshots, s.game); err != nil {
		s.logger.Warn("save snapshot", zap.String("user_id", s.game.UserID()), zap.Error(err))
	}
}
