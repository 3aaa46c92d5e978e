package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/healthsync-app/healthsync/internal/daemon"
)

func init() {
	rootCmd.AddCommand(patientsCmd)
}

var patientsCmd = &cobra.Command{
	Use:   "patients <doctor-id>",
	Short: "Show a doctor's patient roster summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		overview, patients, err := d.Analytics.Overview(context.Background(), args[0])
		if err != nil {
			return err
		}

		if overview.Patients == 0 {
			fmt.Println("No patients assigned.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSCORE\tSTREAK\tADHERENCE\tLAST ACTIVE")
		for _, p := range patients {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d%%\t%s\n",
				p.Name, p.HealthScore, p.CurrentStreak, p.AdherenceRate, p.LastActive)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d patients | avg adherence %.1f%% | avg streak %.1f | %d fully adherent today | %d XP this week\n",
			overview.Patients, overview.AverageAdherence, overview.AverageStreak,
			overview.FullyAdherentToday, overview.XPAwardedThisWeek)
		return nil
	},
}
