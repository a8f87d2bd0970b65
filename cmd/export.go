package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathemmita/internal/export"
	"github.com/abhisek/mathemmita/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the answer log to an .xlsx spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		days, _ := cmd.Flags().GetInt("days")
		misses, _ := cmd.Flags().GetBool("misses")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		opts := store.QueryOpts{OnlyIncorrect: misses}
		if days > 0 {
			opts.From = time.Now().AddDate(0, 0, -days)
		}
		recs, err := export.Attempts(cmd.Context(), st.AttemptRepo(), cfg.UserID, opts)
		if err != nil {
			return err
		}
		if err := export.ToFile(out, recs, time.Local); err != nil {
			return err
		}
		fmt.Printf("Wrote %d answers to %s\n", len(recs), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "mathemmita.xlsx", "Output file")
	exportCmd.Flags().Int("days", 0, "Only the last N days (0 = everything)")
	exportCmd.Flags().Bool("misses", false, "Only failed answers")
}
