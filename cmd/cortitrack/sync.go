// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports link, unlink, status, now, repair, reset, and wipe operations.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/harperreed/cortitrack/internal/charm"
	"github.com/harperreed/cortitrack/internal/config"
	"github.com/harperreed/cortitrack/internal/logging"
	"github.com/harperreed/cortitrack/internal/storage"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync tracker data across devices",
	Long: `Sync tracker data across devices using Charm Cloud.

Only applies to the charm backend. Data is E2E encrypted with your SSH key
before upload.

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  now         Pull and push changes immediately
  repair      Repair local database corruption
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)

Writes sync automatically. Import and migrate into charm sync once at the end.`,
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm(cmd, "link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}
		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "\n✓ Device linked to Charm")
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

Local data is kept. You can link again later with 'cortitrack sync link'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm(cmd, "unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}
		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "✓ Device unlinked from Charm")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if c.GetBackend() != config.BackendCharm {
			color.New(color.FgYellow).Fprintf(out, "Backend is %s; sync is off.\n", c.GetBackend())
			fmt.Fprintln(out, `Set "backend": "charm" in the config to enable it.`)
			return nil
		}

		client, err := charm.GetClient()
		if err != nil {
			return fmt.Errorf("init charm: %w", err)
		}
		store := storage.NewKVStore(client, logging.New(os.Stderr, c.GetLogLevel()))
		defer func() { _ = store.Close() }()

		id, err := client.ID()
		if err != nil {
			color.New(color.FgYellow).Fprintln(out, "Not linked to Charm")
			fmt.Fprintln(out, "\nRun 'cortitrack sync link' to connect.")
			return nil
		}

		fmt.Fprintln(out, "Charm ID:", id)
		fmt.Fprintln(out, "Server:", os.Getenv("CHARM_HOST"))
		if client.IsReadOnly() {
			color.New(color.FgYellow).Fprintln(out, "⚠ Read-only: another process holds the database")
		}
		fmt.Fprintln(out)

		color.New(color.FgGreen).Fprintln(out, "✓ Connected to Charm")
		return printStoreCounts(out, store, client.Keys)
	},
}

// printStoreCounts writes user, reading and key counts for store.
func printStoreCounts(out io.Writer, store storage.Repository, keys func() ([][]byte, error)) error {
	users, err := store.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	readings, err := store.ListReadings(nil)
	if err != nil {
		return fmt.Errorf("failed to list readings: %w", err)
	}
	k, err := keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	fmt.Fprintf(out, "  Users: %d\n", len(users))
	fmt.Fprintf(out, "  Readings: %d\n", len(readings))
	fmt.Fprintf(out, "  Stored collections: %d\n", len(k))
	return nil
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Sync immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := charm.GetClient()
		if err != nil {
			return fmt.Errorf("init charm: %w", err)
		}
		defer func() { _ = client.Close() }()

		if err := client.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "✓ Synced")
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption",
	Long: `Repair database corruption by checkpointing WAL, removing SHM files,
checking integrity, and vacuuming.

Run with --force to attempt recovery even if integrity checks fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		out := cmd.OutOrStdout()
		green, red := color.New(color.FgGreen), color.New(color.FgRed)

		fmt.Fprintln(out, "Repairing cortitrack database...")
		result, err := kv.Repair(charm.DBName, force)
		if result.WalCheckpointed {
			green.Fprintln(out, "  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			green.Fprintln(out, "  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			green.Fprintln(out, "  ✓ Integrity check passed")
		} else {
			red.Fprintln(out, "  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			green.Fprintln(out, "  ✓ Database vacuumed")
		}
		if err != nil {
			if !force {
				color.New(color.FgYellow).Fprintln(out, "\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		green.Fprintln(out, "\n✓ Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will DELETE all local cortitrack data and restore from cloud.")
		fmt.Fprint(out, "Continue? [y/N]: ")
		if answer := readAnswer(cmd.InOrStdin()); answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		client, err := charm.GetClient()
		if err != nil {
			return fmt.Errorf("init charm: %w", err)
		}
		defer func() { _ = client.Close() }()

		if err := client.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		color.New(color.FgGreen).Fprintln(out, "✓ Local data reset and restored from cloud")
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local data",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will PERMANENTLY DELETE all cloud backups and local cortitrack data.")
		fmt.Fprint(out, "Type 'wipe' to confirm: ")
		if readAnswer(cmd.InOrStdin()) != "wipe" {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		result, err := kv.Wipe(charm.DBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}
		color.New(color.FgGreen).Fprintln(out, "✓ Data wiped successfully")
		fmt.Fprintf(out, "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Fprintf(out, "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

// batchWrites turns off per-write sync while a bulk write goes into the
// charm backend. The returned func turns it back on and syncs once. Other
// backends get a no-op.
func batchWrites(backend string) (func() error, error) {
	if backend != config.BackendCharm {
		return func() error { return nil }, nil
	}
	client, err := charm.GetClient()
	if err != nil {
		return nil, fmt.Errorf("init charm: %w", err)
	}
	client.SetAutoSync(false)
	return func() error {
		client.SetAutoSync(true)
		if err := client.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		return nil
	}, nil
}

func runCharm(cmd *cobra.Command, arg string) error {
	c := exec.Command("charm", arg)
	c.Stdin = cmd.InOrStdin()
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	return c.Run()
}

func readAnswer(r io.Reader) string {
	line, _ := bufio.NewReader(r).ReadString('\n')
	return strings.ToLower(strings.TrimSpace(line))
}

func init() {
	syncRepairCmd.Flags().Bool("force", false, "attempt recovery even if integrity checks fail")

	syncCmd.AddCommand(syncLinkCmd, syncUnlinkCmd, syncStatusCmd, syncNowCmd,
		syncRepairCmd, syncResetCmd, syncWipeCmd)
	rootCmd.AddCommand(syncCmd)
}
