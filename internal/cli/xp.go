package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/healthsync-app/healthsync/internal/daemon"
	"github.com/healthsync-app/healthsync/internal/domain"
)

func init() {
	xpAwardCmd.Flags().Int64Var(&xpPoints, "points", 0, "Points to award (negative allowed)")
	xpAwardCmd.Flags().StringVar(&xpReason, "reason", domain.ReasonMedicationTaken, "Ledger reason")
	xpBreakdownCmd.Flags().IntVar(&xpDays, "days", 7, "Window length in days")

	xpCmd.AddCommand(xpAwardCmd)
	xpCmd.AddCommand(xpProgressCmd)
	xpCmd.AddCommand(xpBreakdownCmd)
	rootCmd.AddCommand(xpCmd)
}

var (
	xpPoints int64
	xpReason string
	xpDays   int
)

var xpCmd = &cobra.Command{
	Use:   "xp",
	Short: "Award XP and inspect leveling progress",
}

var xpAwardCmd = &cobra.Command{
	Use:   "award <user-id>",
	Short: "Award XP to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Engine.AwardXP(context.Background(), args[0], xpPoints, xpReason)
		if err != nil {
			return err
		}

		fmt.Printf("Awarded %d XP (%s): total %d, level %d\n", xpPoints, xpReason, res.NewXP, res.NewLevel)
		if res.LeveledUp {
			fmt.Printf("Level up! %d -> %d\n", res.PreviousLevel, res.NewLevel)
		}
		return nil
	},
}

var xpProgressCmd = &cobra.Command{
	Use:   "progress <user-id>",
	Short: "Show progress toward the next level",
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
		p := d.Engine.ProgressToNextLevel(user.XP)

		fmt.Printf("Level %d (%d XP)\n", p.CurrentLevel, user.XP)
		if p.CurrentLevel == p.NextLevel {
			fmt.Println("Max level reached.")
			return nil
		}
		fmt.Printf("Next level: %d (%d XP needed, %d%% there)\n", p.NextLevel, p.XPNeeded, p.ProgressPercentage)
		return nil
	},
}

var xpBreakdownCmd = &cobra.Command{
	Use:   "breakdown <user-id>",
	Short: "Show per-day XP over a trailing window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		series, err := d.Engine.Breakdown(context.Background(), args[0], xpDays)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tXP\tTRANSACTIONS")
		for _, day := range series {
			fmt.Fprintf(w, "%s\t%d\t%d\n", day.Date, day.XP, day.Transactions)
		}
		return w.Flush()
	},
}
