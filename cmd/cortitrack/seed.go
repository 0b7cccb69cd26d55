// ABOUTME: CLI command that loads the demo dataset.
// ABOUTME: Collections that already hold data are left alone.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/cortitrack/internal/demo"
	"github.com/spf13/cobra"
)

var seedValue uint64

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users, history and medical records",
	Long: `Load the demo team: an admin, a coach, two athletes with a week of
history, a healthcare provider and four medical history entries.

Running it again does nothing for collections that already have data.
All demo passwords are 12345678 except the provider's (Abc12345678).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := demo.Seed(svc, demo.NewRand(seedValue))
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if summary.Users+summary.Readings+summary.MedicalRecords == 0 {
			fmt.Fprintln(out, "Nothing to seed; data already present.")
			return nil
		}
		color.New(color.FgGreen).Fprintln(out, "✓ Seeded demo data")
		fmt.Fprintf(out, "  Users: %d\n", summary.Users)
		fmt.Fprintf(out, "  Readings: %d\n", summary.Readings)
		fmt.Fprintf(out, "  Medical records: %d\n", summary.MedicalRecords)
		return nil
	},
}

func init() {
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 0, "random seed for generated history (default: clock)")
	rootCmd.AddCommand(seedCmd)
}
