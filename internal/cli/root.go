// Package cli implements the HealthSync command-line interface using
// Cobra. Each subcommand maps to a tracking capability (streak, xp,
// adherence, serve).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "healthsync",
	Short: "HealthSync — medication tracking engine",
	Long: `HealthSync is the medication adherence and engagement engine.
It tracks daily streaks, computes adherence, and awards XP for
healthy habits, backed by a local SQLite store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
