package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/router"
	"github.com/abhisek/mathemmita/internal/screen"
	"github.com/abhisek/mathemmita/internal/screens/history"
	"github.com/abhisek/mathemmita/internal/screens/prizes"
	sessionscreen "github.com/abhisek/mathemmita/internal/screens/session"
	"github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/speech"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/tricks"
	"github.com/abhisek/mathemmita/internal/ui/components"
)

// Deps are the services the home screen hands to the screens it opens.
type Deps struct {
	// NewGame creates a fresh game for the player.
	NewGame func() *session.Game

	Rewards   *rewards.Service
	Attempts  store.AttemptRepo
	Snapshots store.SnapshotRepo
	Explainer *tricks.Explainer

	UserID    string
	ChildName string
	Logger    *zap.Logger
}

type balanceLoadedMsg struct {
	Balance rewards.Balance
	Prizes  rewards.Config
	Err     error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps     Deps
	menu     components.Menu
	disabled map[int]bool

	today  int
	total  int
	prizes rewards.Config
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. Prizes and history need a stored player.
func New(deps Deps) *HomeScreen {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.ChildName == "" {
		deps.ChildName = speech.DefaultChildName
	}
	h := &HomeScreen{deps: deps}

	signedIn := deps.UserID != ""
	items := []components.MenuItem{
		{Label: "JUGAR", Action: h.play},
		{Label: "PREMIOS", Disabled: !signedIn || deps.Rewards == nil, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: prizes.New(deps.Rewards, deps.UserID)}
			}
		}},
		{Label: "HISTORIAL", Disabled: !signedIn || deps.Attempts == nil, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(deps.Attempts, deps.UserID)}
			}
		}},
		{Label: "SALIR", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.disabled = make(map[int]bool)
	for i, item := range items {
		h.disabled[i] = item.Disabled
	}
	h.menu = components.NewMenu(items)
	return h
}

// play starts a game, resuming the player's saved level.
func (h *HomeScreen) play() tea.Cmd {
	g := h.deps.NewGame()
	if err := session.LoadSnapshot(context.Background(), h.deps.Snapshots, g); err != nil {
		h.deps.Logger.Warn("load snapshot", zap.String("user_id", g.UserID()), zap.Error(err))
	}
	s := sessionscreen.New(sessionscreen.Deps{
		Game:      g,
		Rewards:   h.deps.Rewards,
		Snapshots: h.deps.Snapshots,
		Explainer: h.deps.Explainer,
		Logger:    h.deps.Logger,
	})
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: s}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadBalance()
}

func (h *HomeScreen) loadBalance() tea.Cmd {
	svc, userID := h.deps.Rewards, h.deps.UserID
	if svc == nil || userID == "" {
		return nil
	}
	return func() tea.Msg {
		ctx := context.Background()
		bal, err := svc.Balance(ctx, userID)
		if err != nil {
			return balanceLoadedMsg{Err: err}
		}
		prizes, err := svc.Prizes(ctx, userID)
		return balanceLoadedMsg{Balance: bal, Prizes: prizes, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case balanceLoadedMsg:
		if msg.Err != nil {
			h.deps.Logger.Warn("load balance", zap.String("user_id", h.deps.UserID), zap.Error(msg.Err))
			return h, nil
		}
		h.today, h.total = msg.Balance.Today, msg.Balance.Total
		h.prizes = msg.Prizes
		return h, screen.Points(h.today, h.total)

	case router.ResumedMsg:
		return h, h.loadBalance()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 30 || width < 60

	// All sections share a uniform content width so they line up.
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(h.deps.ChildName, cw))
	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(h.today), cw))
	}
	sections = append(sections, renderStatsBar(h.today, h.total, h.prizes, cw, compact))
	if !compact {
		sections = append(sections, components.RewardsBar(h.today, cw))
	}

	if compact {
		sections = append(sections, renderArcadeMenuCompact(h.menu.Labels(), h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderArcadeMenu(h.menu.Labels(), h.menu.Selected, cw, h.disabled))
	}

	content := strings.Join(sections, "\n\n")
	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Inicio"
}
