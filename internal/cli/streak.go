package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthsync-app/healthsync/internal/daemon"
)

func init() {
	streakCmd.AddCommand(streakShowCmd)
	streakCmd.AddCommand(streakUpdateCmd)
	streakCmd.AddCommand(streakResetCmd)
	rootCmd.AddCommand(streakCmd)
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Inspect and update daily streaks",
}

var streakShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a user's current streak and next milestone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		user, err := d.DB.GetUser(args[0])
		if err != nil {
			return err
		}
		milestone := d.Streaks.Milestone(user.Streak)

		fmt.Printf("Streak:        %d days (best %d)\n", user.Streak, user.BestStreak)
		if milestone.IsMilestone {
			fmt.Printf("Milestone:     %s (%d days)\n", milestone.AchievementName, milestone.Milestone)
		}
		fmt.Printf("Next milestone: %d days\n", milestone.NextMilestone)
		return nil
	},
}

var streakUpdateCmd = &cobra.Command{
	Use:   "update <user-id>",
	Short: "Record activity for today and advance the streak",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Streaks.UpdateStreak(context.Background(), args[0])
		if err != nil {
			return err
		}

		switch {
		case res.StreakBroken:
			fmt.Printf("Streak broken, restarting at %d (best %d)\n", res.CurrentStreak, res.BestStreak)
		case res.StreakContinued:
			fmt.Printf("Streak continued: %d days (best %d)\n", res.CurrentStreak, res.BestStreak)
		default:
			fmt.Printf("Streak: %d days (best %d)\n", res.CurrentStreak, res.BestStreak)
		}
		return nil
	},
}

var streakResetCmd = &cobra.Command{
	Use:   "reset <user-id>",
	Short: "Reset a user's streak to zero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Streaks.ResetStreak(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Streak reset.")
		return nil
	},
}
