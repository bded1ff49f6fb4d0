package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
)

var (
	generateFlags    requestFlags
	generateDOCXOnly bool
	generateOut      string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render every page combination",
	Long: `Renders every combination of variations for every page to DOCX and,
when a ConvertAPI secret is configured, PDF. A failed combination is reported
and the rest of the batch continues.

Cached contents are used when available; pass --refresh to retrieve again.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateFlags.register(generateCmd)
	generateCmd.Flags().BoolVar(&generateDOCXOnly, "docx-only", false, "skip PDF conversion")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "directory to write artifacts to")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if err := requireService(generationService != nil, "generation"); err != nil {
		return err
	}
	ctx := cmd.Context()

	doc, _, err := loadContents(ctx, cmd, &generateFlags)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if conversion != nil {
		conversion.SetSkipConversion(generateDOCXOnly)
		if !conversion.ConvertsToPDF() && !generateDOCXOnly {
			cmd.PrintErrln("No conversion.secret configured; rendering DOCX only.")
		}
	}

	line := newProgressLine(cmd.ErrOrStderr())
	result, err := generationService.Generate(ctx, doc, func(p driving.Progress) {
		line.Update(fmt.Sprintf("Generating: %d/%d (%d failed) %3.0f%%",
			p.Completed, p.Total, p.Failed, p.Fraction()*100))
	})
	line.Done()
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	gen := result.Generation
	cmd.Printf("Generation %s: %d rendered, %d failed in %s\n",
		gen.ID, gen.Completed, gen.Failed, gen.FinishedAt.Sub(gen.StartedAt).Round(time.Millisecond))
	for _, f := range result.Failures {
		cmd.Printf("  FAILED %s: %v\n", f.Key, f.Err)
	}

	if generateOut != "" {
		written, err := writeArtifacts(generateOut, result.Artifacts)
		if err != nil {
			return err
		}
		cmd.Printf("Wrote %d files to %s\n", written, generateOut)
	}
	return nil
}

// writeArtifacts writes <key>.docx and, when present, <key>.pdf for every
// artifact.
func writeArtifacts(dir string, artifacts *domain.ArtifactMap) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	written := 0
	for _, key := range artifacts.Keys() {
		a, _ := artifacts.Get(key)
		for _, format := range []domain.Format{domain.FormatDOCX, domain.FormatPDF} {
			data, err := a.Bytes(format)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				return written, err
			}
			path := filepath.Join(dir, key+format.Extension())
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return written, fmt.Errorf("write %s: %w", path, err)
			}
			written++
		}
	}
	return written, nil
}
