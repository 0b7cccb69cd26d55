// ABOUTME: Root Cobra command for the cortitrack CLI.
// ABOUTME: Opens config, logger, storage and the wellness service via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/cortitrack/internal/config"
	"github.com/harperreed/cortitrack/internal/httpapi"
	"github.com/harperreed/cortitrack/internal/logging"
	"github.com/harperreed/cortitrack/internal/models"
	"github.com/harperreed/cortitrack/internal/storage"
	"github.com/harperreed/cortitrack/internal/wellness"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	logger  *log.Logger
	repo    storage.Repository
	svc     *wellness.Service
	metrics *httpapi.Metrics

	asUser string
)

var rootCmd = &cobra.Command{
	Use:   "cortitrack",
	Short: "Athlete wellness tracker",
	Long: `Cortitrack records one daily wellness reading per athlete and turns it
into trends, team comparisons and alerts for coaches.

WHAT IT TRACKS:

  stress_level      0-100 %
  heart_rate        30-220 bpm
  blood_oxygen_lv   70-100 %
  sleep_quality     0-100 %

  Saving twice on the same day amends that day's reading.

QUICK START:

  $ cortitrack seed                          # Load the demo team
  $ cortitrack reading add 3 45 70 98 80     # Save today's reading for user 3
  $ cortitrack trend 3                       # Last 7 days of stress
  $ cortitrack team compare 3                # Against the team average
  $ cortitrack history list 3 --as 5         # Medical history, as user 5

STORAGE:

  Set "backend" in ~/.config/cortitrack/config.json or CORTITRACK_BACKEND:
    sqlite   local database file (default)
    badger   local key-value store
    charm    key-value store synced through Charm Cloud, E2E encrypted

SURFACES:

  $ cortitrack serve     # HTTP JSON API (X-User-ID header names the caller)
  $ cortitrack mcp       # Model Context Protocol server on stdio`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsStorage(cmd) {
			return nil
		}
		if repo != nil {
			// A failed command skips PersistentPostRunE.
			_ = repo.Close()
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger = logging.New(os.Stderr, cfg.GetLogLevel())

		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		repo, err = cfg.OpenStorage(logger)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}

		metrics = httpapi.NewMetrics()
		svc = wellness.NewService(repo,
			wellness.WithLocation(loc),
			wellness.WithLogger(logger),
			wellness.WithUpsertHook(metrics.UpsertHook()),
		)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo == nil {
			return nil
		}
		err := repo.Close()
		repo, svc = nil, nil
		return err
	},
}

// skipsStorage reports whether cmd runs without opening the store.
func skipsStorage(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "install-skill", "completion", "migrate", "sync":
		return true
	}
	if !cmd.HasParent() {
		return false
	}
	switch cmd.Parent().Name() {
	case "completion", "sync":
		return true
	}
	return false
}

// principal resolves the --as flag to the acting identity.
func principal() (models.Principal, error) {
	if asUser == "" {
		return models.Principal{}, fmt.Errorf("--as <user-id> is required for this command")
	}
	p, err := svc.Principal(asUser)
	if err != nil {
		return models.Principal{}, fmt.Errorf("unknown --as user: %w", err)
	}
	return p, nil
}

// viewer is principal for read commands, where --as is optional. Without it
// readings are shown without their medical context.
func viewer() (models.Principal, error) {
	if asUser == "" {
		return models.Principal{}, nil
	}
	return principal()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&asUser, "as", "", "user id to act as (for access-controlled commands)")
}
