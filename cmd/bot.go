package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run only the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Telegram.Token == "" {
			return errors.New("telegram token not set (MATHEMMITA_TELEGRAM_TOKEN or telegram.token)")
		}

		svc, err := buildServices(cmd, cfg, buildOptions{})
		if err != nil {
			return err
		}
		defer svc.Close()

		bot, err := newBot(svc)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return bot.Run(ctx)
	},
}
