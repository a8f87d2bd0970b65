package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/mathemmita/internal/scheduler"
	"github.com/abhisek/mathemmita/internal/telegram"
	"github.com/abhisek/mathemmita/internal/web"
)

// idleGames is how long a browser or chat game survives without activity.
const idleGames = 2 * time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the nightly reset and the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// runServe builds every component before starting any of them, so a setup
// failure never leaves goroutines running.
func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	svc, err := buildServices(cmd, cfg, buildOptions{})
	if err != nil {
		return err
	}
	defer svc.Close()

	key := []byte(cfg.Server.SessionKey)
	if len(key) == 0 {
		// Sessions do not survive a restart without a configured key.
		key = securecookie.GenerateRandomKey(32)
		svc.logger.Warn("no session key configured, using a random one")
	}
	srv, err := web.New(web.Options{
		SessionKey:  key,
		NewGame:     svc.newGame,
		Rewards:     svc.rewards,
		Explainer:   svc.explainer,
		Snapshots:   svc.store.SnapshotRepo(),
		IdleTimeout: idleGames,
		Logger:      svc.logger.Named("web"),
	})
	if err != nil {
		return fmt.Errorf("create http server: %w", err)
	}

	var bot *telegram.Bot
	if cfg.Telegram.Token != "" {
		if bot, err = newBot(svc); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, cfg.Server.Addr)
	})
	g.Go(func() error {
		return newScheduler(svc).Run(ctx)
	})
	if bot != nil {
		g.Go(func() error {
			return bot.Run(ctx)
		})
	}
	g.Go(func() error {
		err := svc.watchConfig(ctx, resolveConfigPath(cmd))
		if err != nil {
			// Serving goes on with the config loaded at start.
			svc.logger.Warn("config hot reload disabled", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	svc.logger.Info("server stopped")
	return nil
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

func newScheduler(svc *services) *scheduler.Scheduler {
	return scheduler.New(scheduler.Options{
		Profiles:  svc.store.ProfileRepo(),
		Snapshots: svc.store.SnapshotRepo(),
		Keep:      svc.cfg.Game.SnapshotsKept,
		Logger:    svc.logger.Named("scheduler"),
	})
}

// connectTelegram is replaced in tests.
var connectTelegram = telegram.Connect

func newBot(svc *services) (*telegram.Bot, error) {
	api, err := connectTelegram(svc.cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = svc.cfg.Telegram.Debug
	return telegram.New(telegram.Options{
		API:       api,
		NewGame:   svc.newGame,
		Rewards:   svc.rewards,
		Explainer: svc.explainer,
		Snapshots: svc.store.SnapshotRepo(),
		Logger:    svc.logger.Named("telegram"),

		IdleTimeout: idleGames,
	})
}
