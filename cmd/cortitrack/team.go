// ABOUTME: CLI commands for team comparison and overview.
// ABOUTME: Athletes without readings count as stress 0 in every average.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Compare athletes with their team",
}

var teamCompareCmd = &cobra.Command{
	Use:   "compare <user-id>",
	Short: "Compare a user's latest stress with their team's average",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := svc.CompareWithTeam(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Stress %d%% vs %d athletes\n", c.SubjectValue, c.MemberCount)
		line := color.New(color.FgGreen)
		if c.AtOrAbove() {
			line = color.New(color.FgYellow)
		}
		line.Fprintln(out, c.Summary())
		return nil
	},
}

var teamOverviewCmd = &cobra.Command{
	Use:   "overview <team>",
	Short: "List a team's athletes with status and risk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := viewer()
		if err != nil {
			return err
		}
		rows, err := svc.TeamOverview(args[0], v)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintf(out, "No athletes on team %q.\n", args[0])
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Fprintf(out, "%s (team average %.1f)\n", args[0], rows[0].Comparison.TeamAverage)
		for _, row := range rows {
			day := "no reading"
			if row.Latest != nil {
				day = row.Latest.CalendarDay
			}
			fmt.Fprintf(out, "  %s %s %s %s\n",
				padRight(row.User.Name, 20),
				statusColor(row.Status).Sprintf("%3d%% %-13s", row.Comparison.SubjectValue, row.Risk),
				faint.Sprint(padRight(day, 10)),
				row.Comparison.Summary())
		}
		return nil
	},
}

func init() {
	teamCmd.AddCommand(teamCompareCmd, teamOverviewCmd)
	rootCmd.AddCommand(teamCmd)
}
