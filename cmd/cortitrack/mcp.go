// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server over the wellness service.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harperreed/cortitrack/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Logs go to stderr.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "cortitrack": {
        "command": "cortitrack",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  save_reading        Save today's reading (values are clamped to range)
  edit_reading        Change fields of the latest reading
  get_today           Today's reading with status and advice
  list_readings       Readings in a date range
  get_trend           Last 7 days of stress
  compare_team        Stress against the team average
  team_overview       Latest status for every team member
  medical_history     Medical history visible to the acting user
  add_medical_record  Add a medical history entry
  list_users          Users, filtered by role or team

  get_today, list_readings and team_overview take an optional acting_user_id.
  Medical context on readings is returned only when that user is the athlete,
  an admin, or a healthcare provider on the athlete's team.

AVAILABLE RESOURCES:

  cortitrack://users     All users
  cortitrack://today     Today's readings
  cortitrack://summary   Team averages and athletes needing attention
  cortitrack://gauges    Gauge settings`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
