// ABOUTME: CLI command for the 7-day stress trend.
// ABOUTME: Draws one bar per day, colored by stress status.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/cortitrack/internal/wellness"
	"github.com/spf13/cobra"
)

const trendBarWidth = 30

var trendCmd = &cobra.Command{
	Use:     "trend <user-id>",
	Aliases: []string{"t"},
	Short:   "Show the last 7 days of stress",
	Long: `Show a user's stress level for each of the last 7 days, oldest first.
Days without a reading show 0.

Example:
  cortitrack trend 4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := svc.Last7Days(args[0], svc.Now())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		for _, p := range points {
			bar := strings.Repeat("█", p.StressLevel*trendBarWidth/100)
			fmt.Fprintf(out, "%s %s %s %3d%%\n",
				padRight(p.DayLabel, 9),
				faint.Sprint(p.Date),
				statusColor(wellness.StressStatus(p.StressLevel)).Sprint(padRight(bar, trendBarWidth)),
				p.StressLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trendCmd)
}
