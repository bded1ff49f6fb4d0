package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

var (
	fetchFlags requestFlags
	fetchJSON  bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Retrieve report contents",
	Long: `Retrieves the AI-generated variations for every tag of a report and caches
them. Progress is reported per page while the retrieval backend works.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchFlags.register(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "output contents as JSON")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	flags := fetchFlags
	flags.refresh = true
	doc, _, err := loadContents(cmd.Context(), cmd, &flags)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if fetchJSON {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal contents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printContents(cmd, doc)
	return nil
}

func printContents(cmd *cobra.Command, doc *domain.DocumentContents) {
	for _, pageNumber := range doc.PageNumbers() {
		page, _ := doc.Page(pageNumber)
		cmd.Printf("Page %d (%d combinations)\n", pageNumber, page.CombinationCount())
		for i := range page.Tags {
			tag := &page.Tags[i]
			title := tag.Title
			if title == "" {
				title = tag.ID
			}
			cmd.Printf("  %-28s %-12s %d variations\n", title, tag.Kind, len(tag.Variations))
		}
	}
	cmd.Printf("\n%d pages, %d combinations\n", len(doc.Pages), domain.CountCombinations(doc))
}
