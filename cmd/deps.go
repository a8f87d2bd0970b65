package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mathemmita/internal/config"
	"github.com/abhisek/mathemmita/internal/llm"
	"github.com/abhisek/mathemmita/internal/logging"
	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/rewards"
	"github.com/abhisek/mathemmita/internal/session"
	"github.com/abhisek/mathemmita/internal/speech"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/tricks"
	"github.com/abhisek/mathemmita/internal/tutor"
)

// services is everything a game needs, built once per command.
type services struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *store.Store
	rewards   *rewards.Service
	selector  *tutor.Selector
	explainer *tricks.Explainer
	speaker   speech.Speaker
}

// buildOptions selects where logs go and whether the speaker is used.
type buildOptions struct {
	logFile string
	speech  bool
}

func buildServices(cmd *cobra.Command, cfg *config.Config, opts buildOptions) (*services, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Verbose: verbose,
		File:    opts.logFile,
	})
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	s := &services{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		rewards:  rewards.NewService(st.ProfileRepo(), cfg.Game.Points, logger.Named("rewards")),
		selector: tutor.NewSelector(st.AttemptRepo(), tutor.WithConfig(cfg.Tutor), tutor.WithLogger(logger.Named("tutor"))),
		speaker:  speech.Nop{},
	}

	provider, err := llm.NewProvider(cmd.Context(), llm.ConfigFromEnv(), st.EventRepo(), logger.Named("llm"))
	switch {
	case errors.Is(err, llm.ErrDisabled):
		logger.Info("no language model configured, using built-in tricks")
	case err != nil:
		logger.Warn("language model unavailable, using built-in tricks", zap.Error(err))
	}
	s.explainer = tricks.NewExplainer(provider, cfg.Tricks, logger.Named("tricks"))

	if opts.speech && cfg.Speech.Enabled {
		s.speaker = speech.New(cfg.Speech.Command, logger.Named("speech"))
	}
	return s, nil
}

// newGame creates a game for userID. Empty plays anonymously.
func (s *services) newGame(userID string) *session.Game {
	return session.New(session.Options{
		UserID:                 userID,
		ChildName:              s.cfg.ChildName,
		Selector:               s.selector,
		Attempts:               s.store.AttemptRepo(),
		Rewards:                s.rewards,
		Speaker:                s.speaker,
		Level:                  problemgen.Level(s.cfg.Game.StartLevel),
		LevelChangeProbability: s.cfg.Game.LevelChangeProbability,
		Points:                 s.cfg.Game.Points,
		OnError: func(err error) {
			s.logger.Error("game background failure", zap.String("user_id", userID), zap.Error(err))
		},
		Logger: s.logger.Named("game"),
	})
}

// retune applies a reloaded config to the running services.
func (s *services) retune(cfg *config.Config) {
	s.selector.SetConfig(cfg.Tutor)
	s.logger.Info("config reloaded",
		zap.Float64("repeat_probability", cfg.Tutor.RepeatProbability))
}

// watchConfig hot-reloads the config file until ctx is done.
func (s *services) watchConfig(ctx context.Context, path string) error {
	if err := config.Watch(ctx, path, s.logger.Named("config"), s.retune); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	return nil
}

func (s *services) Close() {
	s.speaker.Stop()
	if err := s.store.Close(); err != nil {
		s.logger.Warn("close store", zap.Error(err))
	}
	_ = s.logger.Sync()
}
