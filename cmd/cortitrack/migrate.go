// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Opens both backends itself, so it runs without the root storage hook.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/cortitrack/internal/config"
	"github.com/harperreed/cortitrack/internal/logging"
	"github.com/harperreed/cortitrack/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data between storage backends",
	Long: `Copy every user, reading, medical record and setting from one storage
backend to another.

Readings are upserted, so a destination reading for the same user and day is
replaced. Existing users and medical records in the destination are kept.

BACKENDS: sqlite, badger, charm

USAGE:

  cortitrack migrate --from sqlite --to badger --dry-run
  cortitrack migrate --from sqlite --to charm

Afterwards set "backend" in ~/.config/cortitrack/config.json to the new one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == migrateTo {
			return fmt.Errorf("--from and --to must differ")
		}

		base, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log := logging.New(os.Stderr, base.GetLogLevel())
		out := cmd.OutOrStdout()

		srcCfg, dstCfg := *base, *base
		srcCfg.Backend, dstCfg.Backend = migrateFrom, migrateTo

		if !migrateDryRun && !migrateForce {
			occupied, err := destinationHasData(&dstCfg)
			if err != nil {
				return err
			}
			if occupied {
				return fmt.Errorf("%s destination already has data; use --force to merge into it", migrateTo)
			}
		}

		src, err := srcCfg.OpenStorage(log)
		if err != nil {
			return fmt.Errorf("open %s: %w", migrateFrom, err)
		}
		defer func() { _ = src.Close() }()

		if migrateDryRun {
			data, err := storage.GetAllData(src)
			if err != nil {
				return err
			}
			color.New(color.FgYellow).Fprintln(out, "Dry run - no changes made")
			fmt.Fprintf(out, "Would copy from %s to %s:\n", migrateFrom, migrateTo)
			fmt.Fprintf(out, "  Users: %d\n", len(data.Users))
			fmt.Fprintf(out, "  Readings: %d\n", len(data.Readings))
			fmt.Fprintf(out, "  Medical records: %d\n", len(data.MedicalHistory))
			fmt.Fprintf(out, "  User settings: %d\n", len(data.UserSettings))
			return nil
		}

		dst, err := dstCfg.OpenStorage(log)
		if err != nil {
			return fmt.Errorf("open %s: %w", migrateTo, err)
		}
		defer func() { _ = dst.Close() }()

		flush, err := batchWrites(dstCfg.GetBackend())
		if err != nil {
			return err
		}
		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			return err
		}
		if err := flush(); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(out, "✓ Migrated %s → %s\n", migrateFrom, migrateTo)
		printTransferSummary(cmd, summary)
		return nil
	},
}

// destinationHasData reports whether a local destination backend already
// holds files. Charm destinations are always treated as empty.
func destinationHasData(c *config.Config) (bool, error) {
	switch c.GetBackend() {
	case config.BackendSQLite:
		_, err := os.Stat(filepath.Join(c.GetDataDir(), "cortitrack.db"))
		if os.IsNotExist(err) {
			return false, nil
		}
		return err == nil, err
	case config.BackendBadger:
		return storage.IsDirNonEmpty(filepath.Join(c.GetDataDir(), "badger"))
	}
	return false, nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", config.BackendSQLite, "source backend")
	migrateCmd.Flags().StringVar(&migrateTo, "to", config.BackendBadger, "destination backend")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "count what would be copied without writing")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "write into a destination that already has data")
	rootCmd.AddCommand(migrateCmd)
}
