package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthsync-app/healthsync/internal/daemon"
)

func init() {
	rootCmd.AddCommand(adherenceCmd)
	rootCmd.AddCommand(scoreCmd)
}

var adherenceCmd = &cobra.Command{
	Use:   "adherence <user-id>",
	Short: "Show today's medication adherence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Adherence.ComputeToday(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Adherence: %d%% (%d of %d medications taken)\n",
			res.AdherenceRate, res.TakenMedications, res.TotalMedications)
		if res.AllMedicationsTaken {
			fmt.Println("All medications taken today.")
		}
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <user-id>",
	Short: "Compute and show the composite health score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		res, err := d.Scores.Compute(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Health score: %d/100\n", res.Score)
		fmt.Printf("  adherence %d | streak %d | symptoms %d\n",
			res.AdherencePart, res.StreakPart, res.SymptomPart)
		return nil
	},
}
