// ABOUTME: CLI command for per-user notification settings.
package main

import (
	"fmt"

	"github.com/harperreed/cortitrack/internal/models"
	"github.com/spf13/cobra"
)

var (
	settingsNotification bool
	settingsSound        bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings <user-id>",
	Short: "Show or change a user's notification settings",
	Long: `Show a user's notification settings, or change them with flags.

Examples:
  cortitrack settings 3
  cortitrack settings 3 --sound=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		us, err := svc.UserSettings(args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("notification") || flags.Changed("sound") {
			if flags.Changed("notification") {
				us.Notification = settingsNotification
			}
			if flags.Changed("sound") {
				us.Sound = settingsSound
			}
			if err := svc.UpdateUserSettings(us); err != nil {
				return err
			}
		}

		printSettings(cmd, us)
		return nil
	},
}

func printSettings(cmd *cobra.Command, us *models.UserSettings) {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "notification: %s\n", onOff(us.Notification))
	fmt.Fprintf(out, "sound:        %s\n", onOff(us.Sound))
}

func init() {
	settingsCmd.Flags().BoolVar(&settingsNotification, "notification", true, "enable notifications")
	settingsCmd.Flags().BoolVar(&settingsSound, "sound", true, "enable sound")
	rootCmd.AddCommand(settingsCmd)
}
