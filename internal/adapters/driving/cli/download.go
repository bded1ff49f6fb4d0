package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

var (
	downloadFlags   requestFlags
	downloadFormat  string
	downloadSelects []string
	downloadOut     string
	downloadOpen    bool
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Render the full report document",
	Long: `Renders the full report with one variation chosen per tag and writes it as
DOCX or PDF. Tags without a --select take their first variation.

Examples:
  reportgen download -p "2024 / 06" --select summary=2 --select outlook=1
  reportgen download -t qbr -p Q2/2024 --format docx --out qbr.docx`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	downloadFlags.register(downloadCmd)
	downloadCmd.Flags().StringVarP(&downloadFormat, "format", "f", string(domain.FormatPDF), "output format (docx|pdf)")
	downloadCmd.Flags().StringArrayVarP(&downloadSelects, "select", "s", nil, "choose a variation as tag=variation (repeatable)")
	downloadCmd.Flags().StringVarP(&downloadOut, "out", "o", "", "output file (default <report>.<format> in output.dir)")
	downloadCmd.Flags().BoolVar(&downloadOpen, "open", false, "open the file when done")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	if err := requireService(documentService != nil, "document"); err != nil {
		return err
	}
	format, err := domain.ParseFormat(downloadFormat)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	doc, req, err := loadContents(ctx, cmd, &downloadFlags)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	sel, err := parseSelections(doc, downloadSelects)
	if err != nil {
		return err
	}

	data, err := documentService.RenderFull(ctx, req.Type, doc, sel, format)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	path := downloadOut
	if path == "" {
		path = filepath.Join(outputDir(), req.Type.TemplatePrefix()+format.Extension())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	cmd.Printf("Saved %s (%d bytes)\n", path, len(data))

	if downloadOpen {
		return documentService.Open(path)
	}
	return nil
}

// outputDir returns the configured output directory.
func outputDir() string {
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.OutputDir != "" {
			return settings.OutputDir
		}
	}
	return "."
}
