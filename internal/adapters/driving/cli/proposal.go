package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

var proposalOut string

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Build the proposal deck",
	Long: `Runs the batch proposal pipeline against the extraction backend and renders
the result into the proposal template as a PPTX deck.`,
	Args: cobra.NoArgs,
	RunE: runProposal,
}

func init() {
	proposalCmd.Flags().StringVarP(&proposalOut, "out", "o", "", "output file (default proposal.pptx in output.dir)")
	rootCmd.AddCommand(proposalCmd)
}

func runProposal(cmd *cobra.Command, _ []string) error {
	if err := requireService(proposalService != nil, "proposal"); err != nil {
		return err
	}

	proposal, data, err := proposalService.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("proposal failed: %w", err)
	}

	path := proposalOut
	if path == "" {
		path = filepath.Join(outputDir(), "proposal"+domain.FormatPPTX.Extension())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	cmd.Printf("Proposal for %s saved to %s\n", proposal.Client, path)
	if len(proposal.Validation) > 0 {
		cmd.Println()
		cmd.Println("Data validation:")
		for _, v := range proposal.Validation {
			cmd.Printf("  %-24s %-10s %s\n", v.Title, v.Status, v.Notes)
		}
	}
	return nil
}
