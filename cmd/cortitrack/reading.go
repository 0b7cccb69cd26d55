// ABOUTME: CLI commands for daily readings.
// ABOUTME: Values are validated before saving; a second save on the same day amends it.
package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/wellness"
	"github.com/spf13/cobra"
)

var (
	readingContext string
	readingSince   string
	readingUntil   string
	readingLimit   int

	editStress  int
	editHR      int
	editOxygen  int
	editSleep   int
	editContext string
)

var readingCmd = &cobra.Command{
	Use:     "reading",
	Aliases: []string{"r"},
	Short:   "Save and view daily readings",
}

var readingAddCmd = &cobra.Command{
	Use:     "add <user-id> <stress> <heart-rate> <blood-oxygen> <sleep>",
	Aliases: []string{"a"},
	Short:   "Save today's reading for a user",
	Long: `Save today's reading for a user. If the user already has a reading for
today it is amended in place.

Examples:
  cortitrack reading add 3 45 70 98 80
  cortitrack reading add 4 82 85 94 60 --context "Felt dizzy after practice"`,
	Args: cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make([]int, 4)
		for i, raw := range args[1:] {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("invalid value: %s", raw)
			}
			values[i] = v
		}

		m := models.Metrics{
			StressLevel:  values[0],
			HeartRate:    values[1],
			BloodOxygen:  values[2],
			SleepQuality: values[3],
		}
		if note := strings.TrimSpace(readingContext); note != "" {
			m.MedicalContext = &note
		}
		if err := wellness.Validate(m); err != nil {
			return err
		}

		before, err := svc.TodaysReading(args[0])
		if err != nil {
			return err
		}
		r, err := svc.UpsertTodaysReading(args[0], m)
		if err != nil {
			return fmt.Errorf("failed to save reading: %w", err)
		}

		out := cmd.OutOrStdout()
		if before != nil {
			color.New(color.FgGreen).Fprintf(out, "✓ Updated reading for %s\n", r.CalendarDay)
		} else {
			color.New(color.FgGreen).Fprintf(out, "✓ Saved reading for %s\n", r.CalendarDay)
		}
		printReading(out, r)
		return nil
	},
}

var readingEditCmd = &cobra.Command{
	Use:   "edit <user-id>",
	Short: "Change some of today's values",
	Long: `Change some of today's values. Values you don't pass keep today's
reading, or defaults (stress 0, heart rate 70, blood oxygen 98, sleep 80)
when nothing was recorded today.

Examples:
  cortitrack reading edit 3 --stress 60
  cortitrack reading edit 4 --sleep 55 --context "Late flight"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch models.MetricsPatch
		flags := cmd.Flags()
		if flags.Changed("stress") {
			patch.StressLevel = &editStress
		}
		if flags.Changed("heart-rate") {
			patch.HeartRate = &editHR
		}
		if flags.Changed("blood-oxygen") {
			patch.BloodOxygen = &editOxygen
		}
		if flags.Changed("sleep") {
			patch.SleepQuality = &editSleep
		}
		if flags.Changed("context") {
			patch.MedicalContext = &editContext
		}
		if err := wellness.ValidatePatch(patch); err != nil {
			return err
		}

		r, err := svc.EditLatestReading(args[0], patch)
		if err != nil {
			return fmt.Errorf("failed to edit reading: %w", err)
		}

		if patch.MedicalContext == nil {
			// Only echo context passed on this command line.
			r.MedicalContext = nil
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintf(out, "✓ Updated reading for %s\n", r.CalendarDay)
		printReading(out, r)
		return nil
	},
}

var readingTodayCmd = &cobra.Command{
	Use:   "today <user-id>",
	Short: "Show today's reading with status and advice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := viewer()
		if err != nil {
			return err
		}
		r, err := svc.TodaysReading(args[0])
		if err != nil {
			return err
		}
		if r, err = svc.VisibleReading(v, r); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if r == nil {
			fmt.Fprintf(out, "No reading for %s today.\n", args[0])
			return nil
		}
		printReading(out, r)
		statusColor(wellness.StressStatus(r.StressLevel)).Fprintf(out, "  %s · %s\n",
			wellness.RiskLevel(r.StressLevel), wellness.StressAdvice(r.StressLevel))
		return nil
	},
}

var readingListCmd = &cobra.Command{
	Use:     "list <user-id>",
	Aliases: []string{"ls", "l"},
	Short:   "List a user's readings",
	Long: `List a user's readings, oldest first.

Examples:
  cortitrack reading list 3
  cortitrack reading list 3 -n 5
  cortitrack reading list 3 --since 2025-03-01 --until 2025-03-07
  cortitrack reading list 4 --as 5      # include medical context

Medical context is shown only with --as naming the athlete, an admin, or a
healthcare provider on the athlete's team.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := viewer()
		if err != nil {
			return err
		}

		var readings []*models.Reading
		switch {
		case readingSince != "" || readingUntil != "":
			start, end := readingSince, readingUntil
			if start == "" {
				start = "0000-01-01"
			}
			if end == "" {
				end = svc.Today()
			}
			readings, err = svc.ReadingsInRange(args[0], start, end)
		case readingLimit > 0:
			readings, err = svc.RecentTrend(args[0], readingLimit)
		default:
			readings, err = svc.ReadingsForOwner(args[0])
		}
		if err == nil {
			readings, err = svc.VisibleReadings(v, readings)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(readings) == 0 {
			fmt.Fprintln(out, "No readings found.")
			return nil
		}
		for _, r := range readings {
			printReading(out, r)
		}
		return nil
	},
}

func printReading(w io.Writer, r *models.Reading) {
	faint := color.New(color.Faint)
	note := ""
	if r.MedicalContext != nil && *r.MedicalContext != "" {
		note = faint.Sprintf(" (%s)", truncate(*r.MedicalContext, 40))
	}
	fmt.Fprintf(w, "%s  %s %3d%%  hr %3d bpm  o2 %3d%%  sleep %3d%%%s\n",
		faint.Sprint(r.CalendarDay),
		statusColor(wellness.StressStatus(r.StressLevel)).Sprint("stress"),
		r.StressLevel, r.HeartRate, r.BloodOxygen, r.SleepQuality, note)
}

func statusColor(s wellness.Status) *color.Color {
	switch s {
	case wellness.StatusAlert:
		return color.New(color.FgRed)
	case wellness.StatusWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	readingAddCmd.Flags().StringVar(&readingContext, "context", "", "medical context note for the day")

	readingEditCmd.Flags().IntVar(&editStress, "stress", 0, "stress level (0-100)")
	readingEditCmd.Flags().IntVar(&editHR, "heart-rate", 0, "heart rate (30-220 bpm)")
	readingEditCmd.Flags().IntVar(&editOxygen, "blood-oxygen", 0, "blood oxygen (70-100 %)")
	readingEditCmd.Flags().IntVar(&editSleep, "sleep", 0, "sleep quality (0-100)")
	readingEditCmd.Flags().StringVar(&editContext, "context", "", "replace the medical context note")

	readingListCmd.Flags().StringVar(&readingSince, "since", "", "first day to include (YYYY-MM-DD)")
	readingListCmd.Flags().StringVar(&readingUntil, "until", "", "last day to include (YYYY-MM-DD)")
	readingListCmd.Flags().IntVarP(&readingLimit, "limit", "n", 0, "only the most recent N readings")

	readingCmd.AddCommand(readingAddCmd, readingEditCmd, readingTodayCmd, readingListCmd)
	rootCmd.AddCommand(readingCmd)
}
