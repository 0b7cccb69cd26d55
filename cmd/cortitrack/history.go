// ABOUTME: CLI commands for medical history.
// ABOUTME: Access follows the --as user's role; denied reads show nothing.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/spf13/cobra"
)

var (
	historyDate  string
	historyNotes string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Medical history (admins and same-team healthcare providers)",
	Long: `View and add medical history entries.

Only admins and healthcare providers on the athlete's team can see or add
entries. Everyone else gets an empty list.

Examples:
  cortitrack history list 3 --as 5
  cortitrack history add 3 "Shin Splints" --date 2025-02-01 --notes "Reduce mileage" --as 1`,
}

var historyListCmd = &cobra.Command{
	Use:     "list <user-id>",
	Aliases: []string{"ls"},
	Short:   "List a user's medical history",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := principal()
		if err != nil {
			return err
		}
		records, err := svc.VisibleMedicalHistory(args[0], p)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No medical history visible.")
			return nil
		}
		faint := color.New(color.Faint)
		for _, r := range records {
			fmt.Fprintf(out, "%s %s\n", faint.Sprint(r.DiagnosisDate), color.New(color.Bold).Sprint(r.Condition))
			if r.Notes != "" {
				fmt.Fprintf(out, "           %s\n", r.Notes)
			}
		}
		return nil
	},
}

var historyAddCmd = &cobra.Command{
	Use:   "add <user-id> <condition>",
	Short: "Add a medical history entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := principal()
		if err != nil {
			return err
		}

		date := historyDate
		if date == "" {
			date = svc.Today()
		}
		rec := models.NewMedicalRecord(args[0], args[1], date, historyNotes).WithCreatedAt(svc.Now())
		if err := svc.AddMedicalRecord(p, rec); err != nil {
			return fmt.Errorf("failed to add medical record: %w", err)
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Added %s for %s (%s)\n", rec.Condition, rec.OwnerID, rec.ID)
		return nil
	},
}

func init() {
	historyAddCmd.Flags().StringVar(&historyDate, "date", "", "diagnosis date (YYYY-MM-DD, default today)")
	historyAddCmd.Flags().StringVar(&historyNotes, "notes", "", "notes")

	historyCmd.AddCommand(historyListCmd, historyAddCmd)
	rootCmd.AddCommand(historyCmd)
}
