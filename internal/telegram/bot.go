// Package telegram plays the game over a Telegram chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/tricks"
)

// Callback data of the problem keyboard.
const (
	actionTrick  = "trick"
	actionReveal = "reveal"
	actionNext   = "next"
)

// API is the part of the Telegram client the bot needs.
// *tgbotapi.BotAPI satisfies it.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Connect authorizes a bot token against the Telegram API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("telegram token is required")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return api, nil
}

// GameFactory creates the game of a chat user.
type GameFactory func(userID string) *session.Game

// Options configures a Bot.
type Options struct {
	API       API
	NewGame   GameFactory
	Rewards   *rewards.Service
	Explainer *tricks.Explainer
	Snapshots store.SnapshotRepo
	Logger    *zap.Logger

	// IdleTimeout evicts games of chats that went quiet. Zero keeps them.
	IdleTimeout time.Duration
}

// Bot holds one game per chat.
type Bot struct {
	api       API
	newGame   GameFactory
	rewards   *rewards.Service
	explainer *tricks.Explainer
	snapshots store.SnapshotRepo
	games     *session.Registry
	idle      time.Duration
	logger    *zap.Logger
}

// New creates a Bot.
func New(opts Options) (*Bot, error) {
	if opts.API == nil {
		return nil, errors.New("telegram api is required")
	}
	if opts.NewGame == nil {
		return nil, errors.New("game factory is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Bot{
		api:       opts.API,
		newGame:   opts.NewGame,
		rewards:   opts.Rewards,
		explainer: opts.Explainer,
		snapshots: opts.Snapshots,
		games:     session.NewRegistry(),
		idle:      opts.IdleTimeout,
		logger:    opts.Logger,
	}, nil
}

// UserID is the player id of a chat.
func UserID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// Run polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := b.api.GetUpdatesChan(cfg)
	b.logger.Info("telegram bot polling")

	var sweep <-chan time.Time
	if b.idle > 0 {
		t := time.NewTicker(max(b.idle/2, time.Millisecond))
		defer t.Stop()
		sweep = t.C
	}

	defer b.games.Close()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case <-sweep:
			b.evictIdle()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

// evictIdle drops the games of chats quiet for longer than the idle timeout.
func (b *Bot) evictIdle() int {
	n := b.games.Evict(b.idle)
	if n > 0 {
		b.logger.Debug("evicted idle chats", zap.Int("count", n))
	}
	return n
}

// HandleUpdate processes one message or button press.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		b.handleMessage(ctx, u.Message)
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	chatID := m.Chat.ID
	if m.IsCommand() {
		switch m.Command() {
		case "start":
			b.send(chatID, fmt.Sprintf("¡Hola! Vamos a practicar multiplicaciones y divisiones.\n\n%s", helpText))
			b.next(ctx, chatID)
		case "nuevo", "siguiente":
			b.next(ctx, chatID)
		case "truco":
			b.trick(ctx, chatID)
		case "solucion":
			b.reveal(ctx, chatID)
		case "puntos":
			b.points(ctx, chatID)
		case "problema":
			b.custom(ctx, chatID, m.CommandArguments())
		case "premios":
			b.prizes(ctx, chatID, m.CommandArguments())
		default:
			b.send(chatID, helpText)
		}
		return
	}

	text := strings.TrimSpace(m.Text)
	switch {
	case text == "":
		b.send(chatID, helpText)
	case isNumber(text):
		b.answer(ctx, chatID, text)
	default:
		b.send(chatID, "Escribe solo el número de tu respuesta. "+helpText)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Warn("answer callback", zap.Error(err))
	}
	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	chatID := q.Message.Chat.ID
	switch q.Data {
	case actionTrick:
		b.trick(ctx, chatID)
	case actionReveal:
		b.reveal(ctx, chatID)
	case actionNext:
		b.next(ctx, chatID)
	}
}

// with runs fn on the chat's game, resuming it from the latest snapshot
// when it is created.
func (b *Bot) with(ctx context.Context, chatID int64, fn func(g *session.Game)) {
	uid := UserID(chatID)
	create := func() *session.Game {
		g := b.newGame(uid)
		if err := session.LoadSnapshot(ctx, b.snapshots, g); err != nil {
			b.logger.Warn("resume game", zap.String("user_id", uid), zap.Error(err))
		}
		return g
	}
	b.games.With(uid, create, fn)
}

func (b *Bot) next(ctx context.Context, chatID int64) {
	b.with(ctx, chatID, func(g *session.Game) {
		g.Next(ctx)
		b.persist(ctx, g)
		b.sendProblem(chatID, g)
	})
}

func (b *Bot) custom(ctx context.Context, chatID int64, expr string) {
	b.with(ctx, chatID, func(g *session.Game) {
		if _, err := g.Custom(ctx, expr); err != nil {
			switch {
			case errors.Is(err, problemgen.ErrInexactDivision):
				b.send(chatID, "Ese problema no vale: "+problemgen.ErrInexactDivision.Error()+".")
			case errors.Is(err, problemgen.ErrOutOfRange):
				b.send(chatID, "Ese problema no vale: "+problemgen.ErrOutOfRange.Error()+".")
			default:
				b.send(chatID, "No entiendo ese problema. Usa, por ejemplo, /problema 7 x 8 o /problema 42 / 6.")
			}
			return
		}
		b.sendProblem(chatID, g)
	})
}

func (b *Bot) answer(ctx context.Context, chatID int64, text string) {
	b.with(ctx, chatID, func(g *session.Game) {
		if !g.Phase().AcceptsInput() {
			b.send(chatID, "Pulsa /nuevo para recibir un problema.")
			return
		}
		g.SetInput(text)
		res := g.Submit(ctx)
		if res == nil {
			return
		}
		switch res.Outcome {
		case session.OutcomeIncorrect:
			g.ResetInput()
			b.sendKeyboard(chatID, fmt.Sprintf("%s\n\n%s = ?", res.Message, res.Problem.Text), problemKeyboard())
			return
		case session.OutcomeHardWon:
			b.send(chatID, fmt.Sprintf("🏅 %s (+%d puntos)", res.Message, res.Points))
		default:
			b.send(chatID, fmt.Sprintf("✅ %s (+%d puntos)", res.Message, res.Points))
		}
		b.announce(ctx, chatID, g.UserID(), res.Award)

		g.Next(ctx)
		b.persist(ctx, g)
		b.sendProblem(chatID, g)
	})
}

func (b *Bot) reveal(ctx context.Context, chatID int64) {
	b.with(ctx, chatID, func(g *session.Game) {
		res := g.Reveal(ctx)
		if res == nil {
			b.send(chatID, "No hay ningún problema pendiente. Pulsa /nuevo.")
			return
		}
		b.sendKeyboard(chatID, fmt.Sprintf("👀 %s = %d", res.Problem.Text, res.Problem.Answer), nextKeyboard())
	})
}

func (b *Bot) trick(ctx context.Context, chatID int64) {
	b.with(ctx, chatID, func(g *session.Game) {
		if g.Problem().IsZero() {
			b.send(chatID, "Primero pide un problema con /nuevo.")
			return
		}
		t := b.explainer.Explain(ctx, g.Problem(), g.ChildName())
		b.send(chatID, t.Plain(!g.Phase().AcceptsInput()))
	})
}

func (b *Bot) points(ctx context.Context, chatID int64) {
	if b.rewards == nil {
		b.send(chatID, "Los puntos no están disponibles.")
		return
	}
	uid := UserID(chatID)
	bal, err := b.rewards.Balance(ctx, uid)
	if err != nil {
		b.logger.Error("read balance", zap.String("user_id", uid), zap.Error(err))
		b.send(chatID, "No he podido leer tus puntos. Inténtalo más tarde.")
		return
	}
	prizes, err := b.rewards.Prizes(ctx, uid)
	if err != nil {
		b.logger.Error("read prizes", zap.String("user_id", uid), zap.Error(err))
		b.send(chatID, "No he podido leer tus premios. Inténtalo más tarde.")
		return
	}
	b.send(chatID, pointsText(bal, prizes))
}

func (b *Bot) prizes(ctx context.Context, chatID int64, args string) {
	if b.rewards == nil {
		b.send(chatID, "Los premios no están disponibles.")
		return
	}
	parts := strings.Split(args, "|")
	if len(parts) != 3 {
		b.send(chatID, "Usa: /premios helado | cine | parque")
		return
	}
	cfg := rewards.Config{
		Level1: strings.TrimSpace(parts[0]),
		Level2: strings.TrimSpace(parts[1]),
		Level3: strings.TrimSpace(parts[2]),
	}
	if err := b.rewards.SavePrizes(ctx, UserID(chatID), cfg); err != nil {
		var ve *rewards.ValidationError
		if errors.As(err, &ve) {
			b.send(chatID, "Premio "+ve.Field+": "+ve.Reason)
			return
		}
		b.logger.Error("save prizes", zap.Error(err))
		b.send(chatID, "No he podido guardar los premios.")
		return
	}
	b.send(chatID, "🎁 ¡Premios guardados!")
}

func (b *Bot) announce(ctx context.Context, chatID int64, userID string, a *rewards.Award) {
	if a == nil || len(a.Unlocked) == 0 || b.rewards == nil {
		return
	}
	prizes, err := b.rewards.Prizes(ctx, userID)
	if err != nil {
		b.logger.Warn("read prizes", zap.String("user_id", userID), zap.Error(err))
	}
	for _, m := range a.Unlocked {
		b.send(chatID, fmt.Sprintf("🎉 ¡Has llegado a %d puntos hoy! Premio: %s", m.Points, prizes.Label(m)))
	}
}

func (b *Bot) persist(ctx context.Context, g *session.Game) {
	if err := session.SaveSnapshot(ctx, b.snapshots, g); err != nil {
		b.logger.Warn("save game", zap.String("user_id", g.UserID()), zap.Error(err))
	}
}

func (b *Bot) sendProblem(chatID int64, g *session.Game) {
	p := g.Problem()
	text := fmt.Sprintf("🧮 %s = ?", p.Text)
	if p.IsRetry {
		text = "🔁 ¡Otra vez este reto!\n" + text
	}
	b.sendKeyboard(chatID, text, problemKeyboard())
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func isNumber(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
