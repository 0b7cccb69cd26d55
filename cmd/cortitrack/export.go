// ABOUTME: CLI commands for exporting and importing tracker data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats; imports JSON backups.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportUser   string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export tracker data",
	Long: `Export tracker data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   One readings table per user

OPTIONS:

  --output, -o   Write to file instead of stdout
  --user         Only this user's readings (markdown only)
  --since        Only readings since this date, YYYY-MM-DD (markdown only)

EXAMPLES:

  cortitrack export json -o backup.json
  cortitrack export markdown --user 4 --since 2025-03-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error

		switch args[0] {
		case "json":
			data, err = storage.ExportJSON(repo)
		case "yaml":
			data, err = storage.ExportYAML(repo)
		case "markdown":
			var owner *string
			if exportUser != "" {
				owner = &exportUser
			}
			var since *time.Time
			if exportSince != "" {
				t, perr := time.ParseInLocation(models.DayLayout, exportSince, svc.Now().Location())
				if perr != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			var md string
			md, err = storage.ExportMarkdown(repo, owner, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", exportOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tracker data from JSON",
	Long: `Import tracker data from a JSON backup file.

Readings replace any reading stored for the same user and day. Users and
medical records that already exist are skipped.

EXAMPLES:

  cortitrack import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		flush, err := batchWrites(cfg.GetBackend())
		if err != nil {
			return err
		}
		summary, err := storage.ImportJSON(repo, raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		if err := flush(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintf(out, "✓ Imported from %s\n", args[0])
		printTransferSummary(cmd, summary)
		return nil
	},
}

func printTransferSummary(cmd *cobra.Command, s *storage.TransferSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  Users: %d\n", s.Users)
	fmt.Fprintf(out, "  Readings: %d\n", s.Readings)
	fmt.Fprintf(out, "  Medical records: %d\n", s.MedicalRecords)
	fmt.Fprintf(out, "  User settings: %d\n", s.UserSettings)
	if s.GaugeSettings {
		fmt.Fprintln(out, "  Gauge settings: yes")
	}
	if s.Skipped > 0 {
		fmt.Fprintf(out, "  Skipped (already present): %d\n", s.Skipped)
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportUser, "user", "", "only this user's readings (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include readings since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
