package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for reportgen.

Pick a report type, period and department, browse the AI-written variations
of every tag, and download the full report once the pages look right. Every
page combination renders in the background as soon as contents arrive.

Controls:
  ↑/k, ↓/j - Previous / next tag
  [ / ]    - Previous / next page
  ←/h, →/l - Cycle variations
  g        - Generate again
  d / p    - Download DOCX / PDF
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the configured services.
func tuiPorts() *tui.Ports {
	return &tui.Ports{
		Content:    contentService,
		Generation: generationService,
		Document:   documentService,
		Proposal:   proposalService,
		Settings:   settingsService,
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// The TUI is long-running, so housekeeping runs alongside it.
	if schedulerConfig.Enabled && scheduler != nil {
		schedulerCtx, schedulerCancel := context.WithCancel(cmd.Context())
		defer schedulerCancel()

		go func() {
			if err := scheduler.Start(schedulerCtx); err != nil {
				fmt.Fprintf(os.Stderr, "scheduler stopped: %v\n", err)
			}
		}()

		defer func() {
			if err := scheduler.Stop(); err != nil {
				fmt.Fprintf(os.Stderr, "scheduler stop error: %v\n", err)
			}
		}()
	}

	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
