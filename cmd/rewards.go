package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathemmita/internal/rewards"
)

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Show or set the prizes unlocked by daily points",
}

var rewardsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show today's points and the prizes",
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

		svc := rewards.NewService(st.ProfileRepo(), cfg.Game.Points, nil)
		ctx := cmd.Context()
		bal, err := svc.Balance(ctx, cfg.UserID)
		if err != nil {
			return err
		}
		prizes, err := svc.Prizes(ctx, cfg.UserID)
		if err != nil {
			return err
		}

		fmt.Printf("Today: %d points   Total: %d points\n\n", bal.Today, bal.Total)
		for _, m := range rewards.Milestones() {
			mark := "  "
			if bal.Today >= m.Points {
				mark = "✓ "
			}
			fmt.Printf("%s%5d  %s\n", mark, m.Points, prizes.Label(m))
		}
		if m, ok := rewards.Next(bal.Today); ok {
			fmt.Printf("\n%d points to go for %s\n", m.Points-bal.Today, prizes.Label(m))
		}
		return nil
	},
}

var rewardsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Name the three prizes",
	Example: `  mathemmita rewards set --level1 "helado" --level2 "cine" --level3 "parque"`,
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

		svc := rewards.NewService(st.ProfileRepo(), cfg.Game.Points, nil)
		ctx := cmd.Context()
		prizes, err := svc.Prizes(ctx, cfg.UserID)
		if err != nil {
			return err
		}
		// Unset flags keep the stored names.
		for flag, dst := range map[string]*string{
			"level1": &prizes.Level1,
			"level2": &prizes.Level2,
			"level3": &prizes.Level3,
		} {
			if cmd.Flags().Changed(flag) {
				*dst, _ = cmd.Flags().GetString(flag)
			}
		}

		if err := svc.SavePrizes(ctx, cfg.UserID, prizes); err != nil {
			var verr *rewards.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("--%s: %s", verr.Field, verr.Reason)
			}
			return err
		}
		fmt.Println("Prizes saved.")
		return nil
	},
}

func init() {
	rewardsSetCmd.Flags().String("level1", "", "Prize at 1000 points")
	rewardsSetCmd.Flags().String("level2", "", "Prize at 2000 points")
	rewardsSetCmd.Flags().String("level3", "", "Prize at 3000 points")

	rewardsCmd.AddCommand(rewardsShowCmd)
	rewardsCmd.AddCommand(rewardsSetCmd)
}
