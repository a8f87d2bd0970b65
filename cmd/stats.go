package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathemmita/internal/store"
)

// pendingScan is how many recent failures stats checks for a later fix.
const pendingScan = 20

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show answer totals, accuracy and pending failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		attempts := st.AttemptRepo()
		stats, err := attempts.Stats(ctx, cfg.UserID)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		if stats.Total == 0 {
			fmt.Printf("No answers recorded for %s yet.\n", cfg.UserID)
			return nil
		}

		fmt.Printf("Player:    %s\n", cfg.UserID)
		fmt.Printf("Answers:   %d (%d correct, %.0f%%)\n",
			stats.Total, stats.Correct, 100*float64(stats.Correct)/float64(stats.Total))
		fmt.Printf("Playing:   %s → %s\n",
			stats.First.Local().Format("2006-01-02"), stats.Last.Local().Format("2006-01-02"))

		fmt.Println()
		fmt.Printf("%-4s  %8s  %8s  %8s\n", "Op", "Answers", "Correct", "Accuracy")
		fmt.Println(strings.Repeat("─", 34))
		for _, op := range stats.ByOperator {
			fmt.Printf("%-4s  %8d  %8d  %7.0f%%\n", op.Operator, op.Total, op.Correct, 100*op.Accuracy())
		}

		pending, err := pendingFailures(ctx, attempts, cfg.UserID)
		if err != nil {
			return err
		}
		fmt.Println()
		if len(pending) == 0 {
			fmt.Println("No pending failures.")
			return nil
		}
		fmt.Println("Pending failures (may come back as retries):")
		for _, r := range pending {
			fmt.Printf("  %-12s  missed %s\n", r.DisplayText, r.Timestamp.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

// pendingFailures returns recent failures not answered correctly since,
// one per problem.
func pendingFailures(ctx context.Context, attempts store.AttemptRepo, userID string) ([]store.AttemptRecord, error) {
	recent, err := attempts.RecentIncorrect(ctx, userID, pendingScan)
	if err != nil {
		return nil, fmt.Errorf("load failures: %w", err)
	}
	seen := make(map[string]bool)
	var out []store.AttemptRecord
	for _, r := range recent {
		if seen[r.DisplayText] {
			continue
		}
		seen[r.DisplayText] = true
		fixed, err := attempts.HasLaterCorrect(ctx, userID, r.DisplayText, r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", r.DisplayText, err)
		}
		if !fixed {
			out = append(out, r)
		}
	}
	return out, nil
}
