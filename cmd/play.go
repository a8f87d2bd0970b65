package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mathemmita/internal/app"
	"github.com/abhisek/mathemmita/internal/logging"
	"github.com/abhisek/mathemmita/internal/screens/home"
	"github.com/abhisek/mathemmita/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the terminal game",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func init() {
	playCmd.Flags().Bool("anonymous", false, "Play without logging answers or earning points")
}

// runTUI builds the services and launches the terminal UI.
func runTUI(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = logging.DefaultFile()
	}
	svc, err := buildServices(cmd, cfg, buildOptions{logFile: logFile, speech: true})
	if err != nil {
		return err
	}
	defer svc.Close()

	userID := cfg.UserID
	if anon, _ := cmd.Flags().GetBool("anonymous"); anon {
		userID = ""
	}

	return app.Run(cmd.Context(), home.Deps{
		NewGame:   func() *session.Game { return svc.newGame(userID) },
		Rewards:   svc.rewards,
		Attempts:  svc.store.AttemptRepo(),
		Snapshots: svc.store.SnapshotRepo(),
		Explainer: svc.explainer,
		UserID:    userID,
		ChildName: cfg.ChildName,
		Logger:    svc.logger.Named("tui"),
	})
}
