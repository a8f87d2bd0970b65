package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete a player's answers, points, prizes and saved level",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return errors.New("this deletes everything recorded for " + cfg.UserID + "; rerun with --yes")
		}

		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if err := st.AttemptRepo().DeleteUser(ctx, cfg.UserID); err != nil {
			return fmt.Errorf("delete attempts: %w", err)
		}
		if err := st.ProfileRepo().DeleteUser(ctx, cfg.UserID); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		if err := st.SnapshotRepo().DeleteUser(ctx, cfg.UserID); err != nil {
			return fmt.Errorf("delete snapshots: %w", err)
		}
		fmt.Printf("Reset %s.\n", cfg.UserID)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the deletion")
}
