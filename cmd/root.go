package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/abhisek/mathemmita/internal/config"
	"github.com/abhisek/mathemmita/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mathemmita",
	Short: "Multiplication and division practice for kids",
	Long:  "Mathemmita is a terminal game that drills times tables and exact divisions, repeating what the child missed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	addPersistentFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func addPersistentFlags(pf *pflag.FlagSet) {
	pf.String("db", "", "SQLite file or postgres:// DSN (overrides MATHEMMITA_DB)")
	pf.String("config", "", "Path to config.yaml (default $XDG_CONFIG_HOME/mathemmita/config.yaml)")
	pf.String("user", "", "Player id whose answers are logged (overrides MATHEMMITA_USER)")
	pf.BoolP("verbose", "v", false, "Log at debug level")
}

// resolveConfigPath returns --config, falling back to the default path.
func resolveConfigPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath(cmd))
	if err != nil {
		return nil, err
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.UserID = u
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database = db
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database using --db or the config (highest
// priority), then MATHEMMITA_DB, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.Database != "" {
		return cfg.Database, store.EnsureDir(cfg.Database)
	}
	return store.DefaultDBPath()
}

// openStore opens the configured database.
func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
