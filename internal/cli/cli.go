// Package cli wires the seminar-events pipeline into a cobra command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tmoulton/seminar-events/internal/calendar"
	"github.com/tmoulton/seminar-events/internal/config"
	"github.com/tmoulton/seminar-events/internal/extract"
	"github.com/tmoulton/seminar-events/internal/identity"
	"github.com/tmoulton/seminar-events/internal/logger"
	"github.com/tmoulton/seminar-events/internal/registry"
	"github.com/tmoulton/seminar-events/internal/temporal"
)

var (
	flagConfig  string
	flagDataDir string
	flagDryRun  bool
	flagFormat  string
	flagVerbose bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seminar-events",
		Short: "Extract and track seminar events from mailing-list archives",
		Long: `seminar-events crawls mailing-list archives for announcements, extracts
each event's date, time span and room, links announcements to their later
reminders and corrections, and publishes eligible talks to a calendar.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Override the configured data directory")
	cmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Print calendar publishes instead of writing them")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newRetryCmd())
	cmd.AddCommand(newParseCmd())

	return cmd
}

// loadConfig resolves the effective configuration from flags.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
		cfg.OutboxDir = filepath.Join(flagDataDir, "outbox")
	}
	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}
	return cfg, nil
}

// newPublisher picks the configured publisher, honoring --dry-run.
func newPublisher(cfg *config.Config) (registry.Publisher, error) {
	if flagDryRun {
		return calendar.NewDryRun(os.Stdout), nil
	}
	outDir, err := config.ExpandPath(cfg.OutboxDir)
	if err != nil {
		return nil, err
	}
	return calendar.NewICSPublisher(outDir)
}

// newAssembler builds the extraction pipeline from configuration. The room
// dictionary and tagger are constructed once here and shared read-only.
func newAssembler(cfg *config.Config, publisher registry.Publisher) (*registry.Assembler, error) {
	rooms := extract.NewRooms(nil)
	if cfg.RoomsPath != "" {
		var err error
		rooms, err = extract.LoadRooms(cfg.RoomsPath)
		if err != nil {
			return nil, fmt.Errorf("loading room dictionary: %w", err)
		}
	}

	resolver := extract.NewResolver(temporal.NewRules(), cfg.Extract)
	ident := identity.NewResolver(cfg.Identity)

	return registry.NewAssembler(resolver, rooms, ident, cfg.Identity.Window, publisher, cfg.Registry), nil
}
