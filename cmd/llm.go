package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathemmita/internal/llm"
	"github.com/abhisek/mathemmita/internal/logging"
	"github.com/abhisek/mathemmita/internal/problemgen"
	"github.com/abhisek/mathemmita/internal/store"
	"github.com/abhisek/mathemmita/internal/tricks"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Check the language model and inspect its request log",
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Ask the configured provider for one trick",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Verbose: verbose})
		if err != nil {
			return err
		}
		defer logger.Sync()

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		lcfg := llm.ConfigFromEnv()
		provider, err := llm.NewProvider(cmd.Context(), lcfg, s.EventRepo(), logger)
		if err != nil {
			return fmt.Errorf("provider: %w", err)
		}
		fmt.Printf("Provider:  %s (%s)\n", lcfg.Provider, provider.ModelID())

		p, err := problemgen.Parse(exprArg(args, "7 x 8"))
		if err != nil {
			return err
		}
		ctx := llm.WithPurpose(cmd.Context(), llm.PurposeCheck)
		start := time.Now()
		t, err := tricks.NewExplainer(provider, cfg.Tricks, logger).Generate(ctx, p, cfg.ChildName)
		if err != nil {
			return fmt.Errorf("generate trick for %s: %w", p.Text, err)
		}
		fmt.Printf("Latency:   %s\n\n", time.Since(start).Round(time.Millisecond))
		fmt.Println(t.Plain(true))
		return nil
	},
}

// exprArg returns the arguments joined, or def when there are none.
func exprArg(args []string, def string) string {
	if len(args) == 0 {
		return def
	}
	return strings.Join(args, " ")
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		return withEvents(cmd, func(ctx context.Context, events store.EventRepo) error {
			recs, err := events.QueryLLMEvents(ctx, store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(recs) == 0 {
				fmt.Println("No LLM events found.")
				return nil
			}

			fmt.Printf("%-5s  %-19s  %-8s  %-28s  %-6s  %-6s  %-7s  %s\n",
				"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
			fmt.Println(strings.Repeat("─", 94))
			for _, e := range recs {
				if purpose != "" && e.Purpose != purpose {
					continue
				}
				ok := "✓"
				if !e.Success {
					ok = "✗"
				}
				fmt.Printf("%-5d  %-19s  %-8s  %-28s  %-6d  %-6d  %-7d  %s\n",
					e.ID,
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Purpose,
					truncate(e.Model, 28),
					e.InputTokens,
					e.OutputTokens,
					e.LatencyMs,
					ok,
				)
			}
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withEvents(cmd, func(ctx context.Context, events store.EventRepo) error {
			e, err := events.GetLLMEvent(ctx, id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			sep := strings.Repeat("─", 60)
			fmt.Printf("ID:        %d\n", e.ID)
			fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("Provider:  %s\n", e.Provider)
			fmt.Printf("Model:     %s\n", e.Model)
			fmt.Printf("Purpose:   %s\n", e.Purpose)
			fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
			fmt.Printf("Latency:   %dms\n", e.LatencyMs)
			fmt.Printf("Success:   %v\n", e.Success)
			if e.ErrorMessage != "" {
				fmt.Printf("Error:     %s\n", e.ErrorMessage)
			}

			for _, part := range []struct{ title, body string }{
				{"REQUEST", e.RequestBody},
				{"RESPONSE", e.ResponseBody},
			} {
				fmt.Println()
				fmt.Println(sep)
				fmt.Println(part.title)
				fmt.Println(sep)
				if part.body == "" {
					fmt.Println("(not captured)")
					continue
				}
				fmt.Println(part.body)
			}
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(ctx context.Context, events store.EventRepo) error {
			byPurpose, err := events.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Println("No LLM usage recorded yet.")
				return nil
			}

			fmt.Println("Usage by Purpose")
			fmt.Println(strings.Repeat("─", 72))
			fmt.Printf("%-16s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Avg Ms")
			fmt.Println(strings.Repeat("─", 72))
			var calls, in, out int
			for _, u := range byPurpose {
				fmt.Printf("%-16s  %6d  %10d  %10d  %8d\n",
					u.Key, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
				calls += u.Calls
				in += u.InputTokens
				out += u.OutputTokens
			}
			fmt.Println(strings.Repeat("─", 72))
			fmt.Printf("%-16s  %6d  %10d  %10d\n", "TOTAL", calls, in, out)

			byModel, err := events.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			fmt.Println()
			fmt.Println("Estimated Cost (USD)")
			fmt.Println(strings.Repeat("─", 72))
			var total float64
			var unknown []string
			for _, u := range byModel {
				cost := llm.LookupCost(u.Key)
				if cost == nil {
					unknown = append(unknown, u.Key)
					fmt.Printf("%-32s  %6d  %10s\n", truncate(u.Key, 32), u.Calls, "?")
					continue
				}
				c := cost.Cost(u.InputTokens, u.OutputTokens)
				total += c
				fmt.Printf("%-32s  %6d  %10s\n", truncate(u.Key, 32), u.Calls, formatCost(c))
			}
			fmt.Println(strings.Repeat("─", 72))
			fmt.Printf("%-32s  %6s  %10s\n", "TOTAL", "", formatCost(total))
			if len(unknown) > 0 {
				fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
			}
			return nil
		})
	},
}

// withEvents opens the configured store and hands its LLM event log to fn.
func withEvents(cmd *cobra.Command, fn func(ctx context.Context, events store.EventRepo) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(cmd.Context(), s.EventRepo())
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (trick, check)")

	llmCmd.AddCommand(llmCheckCmd)
	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
