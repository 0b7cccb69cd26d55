// ABOUTME: CLI commands for gauge display settings.
// ABOUTME: Only admins may change gauges.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/spf13/cobra"
)

var (
	gaugeMin    float64
	gaugeMax    float64
	gaugeLow    string
	gaugeMedium string
	gaugeHigh   string
)

var gaugesCmd = &cobra.Command{
	Use:   "gauges",
	Short: "Show or change gauge ranges and colors",
}

var gaugesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show gauge settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := svc.GaugeSettings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range models.AllMetrics {
			gauge := g.Gauge(m)
			fmt.Fprintf(out, "%s %4.0f - %-4.0f %s\n",
				padRight(string(m), 16), gauge.Min, gauge.Max,
				color.New(color.Faint).Sprintf("low %s  medium %s  high %s",
					gauge.Colors.Low, gauge.Colors.Medium, gauge.Colors.High))
		}
		return nil
	},
}

var gaugesSetCmd = &cobra.Command{
	Use:   "set <metric>",
	Short: "Change one metric's gauge (admin only)",
	Long: `Change one metric's gauge. Only the flags you pass are changed.

Example:
  cortitrack gauges set heart_rate --min 50 --max 200 --high "#b91c1c" --as 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metric := models.Metric(args[0])
		if !models.IsValidMetric(args[0]) {
			names := make([]string, len(models.AllMetrics))
			for i, m := range models.AllMetrics {
				names[i] = string(m)
			}
			return fmt.Errorf("unknown metric: %s (use %s)", args[0], strings.Join(names, ", "))
		}
		p, err := principal()
		if err != nil {
			return err
		}

		g, err := svc.GaugeSettings()
		if err != nil {
			return err
		}
		gauge := g.Gauge(metric)
		flags := cmd.Flags()
		if flags.Changed("min") {
			gauge.Min = gaugeMin
		}
		if flags.Changed("max") {
			gauge.Max = gaugeMax
		}
		if flags.Changed("low") {
			gauge.Colors.Low = gaugeLow
		}
		if flags.Changed("medium") {
			gauge.Colors.Medium = gaugeMedium
		}
		if flags.Changed("high") {
			gauge.Colors.High = gaugeHigh
		}

		if err := svc.UpdateGaugeSettings(p, g); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Updated %s gauge\n", metric)
		return nil
	},
}

func init() {
	f := gaugesSetCmd.Flags()
	f.Float64Var(&gaugeMin, "min", 0, "range minimum")
	f.Float64Var(&gaugeMax, "max", 0, "range maximum")
	f.StringVar(&gaugeLow, "low", "", "low band color (#rrggbb)")
	f.StringVar(&gaugeMedium, "medium", "", "medium band color (#rrggbb)")
	f.StringVar(&gaugeHigh, "high", "", "high band color (#rrggbb)")

	gaugesCmd.AddCommand(gaugesShowCmd, gaugesSetCmd)
	rootCmd.AddCommand(gaugesCmd)
}
