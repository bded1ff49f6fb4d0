// Package cli implements the reportgen command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=v1.2.3".
var version = "dev"

var (
	verbose   bool
	configDir string
)

// ConversionControl toggles the PDF step of generation.
type ConversionControl interface {
	SetSkipConversion(skip bool)
	ConvertsToPDF() bool
}

// Services holds the driving ports the commands use.
type Services struct {
	Settings   driving.SettingsService
	Content    driving.ContentService
	Generation driving.GenerationService
	Document   driving.DocumentService
	Proposal   driving.ProposalService
	Conversion ConversionControl

	Scheduler       driving.Scheduler
	SchedulerConfig domain.SchedulerConfig
}

// Builder constructs the services once flags are parsed. The returned
// cleanup runs after the command finishes.
type Builder func(ctx context.Context, configDir string) (*Services, func(), error)

var (
	settingsService   driving.SettingsService
	contentService    driving.ContentService
	generationService driving.GenerationService
	documentService   driving.DocumentService
	proposalService   driving.ProposalService
	conversion        ConversionControl
	scheduler         driving.Scheduler
	schedulerConfig   domain.SchedulerConfig

	builder Builder
	cleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "reportgen",
	Short: "Generate business reports from AI-written content",
	Long: `reportgen retrieves AI-generated variations for every tag of a report,
renders each page combination to DOCX and PDF, and assembles the full
document from the variations you choose.

Run 'reportgen tui' for the interactive flow.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.reportgen)")
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	contentService = s.Content
	generationService = s.Generation
	documentService = s.Document
	proposalService = s.Proposal
	conversion = s.Conversion
	scheduler = s.Scheduler
	schedulerConfig = s.SchedulerConfig
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. build is called before any command that
// needs services.
func Execute(ctx context.Context, build Builder) error {
	builder = build
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if builder == nil || cmd == versionCmd {
		return nil
	}
	services, done, err := builder(cmd.Context(), configDir)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	cleanup = done
	return nil
}

func requireService(ok bool, name string) error {
	if !ok {
		return errors.New(name + " service not configured")
	}
	return nil
}
