package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// requestFlags are the flags naming the contents to retrieve.
type requestFlags struct {
	reportType string
	period     string
	department string
	refresh    bool
	noStream   bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.reportType, "type", "t", string(domain.ReportMonthlySales),
		`report type ("Monthly Sales Report", "Quarterly Business Review", "Marketing Plan" or monthly|qbr|mplan)`)
	cmd.Flags().StringVarP(&f.period, "period", "p", "", `reporting period such as "2024 / 06" or "Q2/2024"`)
	cmd.Flags().StringVarP(&f.department, "department", "d", domain.DefaultDepartment, "department")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached contents")
	cmd.Flags().BoolVar(&f.noStream, "no-stream", false, "retrieve in one request without progress events")
}

func (f *requestFlags) request() (domain.ReportRequest, error) {
	reportType, err := domain.ParseReportType(f.reportType)
	if err != nil {
		return domain.ReportRequest{}, err
	}
	period, err := domain.ParsePeriod(f.period)
	if err != nil {
		return domain.ReportRequest{}, err
	}
	req := domain.ReportRequest{
		Type:       reportType,
		Period:     period,
		Department: strings.TrimSpace(f.department),
	}
	return req, req.Validate()
}

// loadContents returns cached contents unless refresh is set, otherwise
// retrieves them with a progress line on stderr.
func loadContents(ctx context.Context, cmd *cobra.Command, f *requestFlags) (*domain.DocumentContents, domain.ReportRequest, error) {
	if err := requireService(contentService != nil, "content"); err != nil {
		return nil, domain.ReportRequest{}, err
	}
	req, err := f.request()
	if err != nil {
		return nil, req, err
	}

	if !f.refresh {
		doc, err := contentService.Cached(ctx, req)
		if err == nil {
			return doc, req, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, req, err
		}
	}

	if f.noStream {
		cmd.PrintErrf("Retrieving %s for %s...\n", req.Type, req.Department)
		doc, err := contentService.FetchOnce(ctx, req)
		return doc, req, err
	}

	line := newProgressLine(cmd.ErrOrStderr())
	doc, err := contentService.Fetch(ctx, req, func(p *domain.RetrievalProgress) {
		line.Update(fmt.Sprintf("Retrieving contents: %s %3.0f%%", p.State(), p.Overall()))
	})
	line.Done()
	return doc, req, err
}

// progressLine rewrites a single status line on terminals and prints only
// changed lines elsewhere.
type progressLine struct {
	w    io.Writer
	tty  bool
	last string
}

func newProgressLine(w io.Writer) *progressLine {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &progressLine{w: w, tty: tty}
}

func (p *progressLine) Update(s string) {
	if s == p.last {
		return
	}
	p.last = s
	if p.tty {
		fmt.Fprintf(p.w, "\r\033[K%s", s)
		return
	}
	fmt.Fprintln(p.w, s)
}

func (p *progressLine) Done() {
	if p.tty && p.last != "" {
		fmt.Fprintln(p.w)
	}
}

// parseSelections parses tag=variation pairs.
func parseSelections(doc *domain.DocumentContents, pairs []string) (domain.Selection, error) {
	sel := domain.DefaultSelection(doc)
	for _, pair := range pairs {
		tagID, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("selection %q must be tag=variation: %w", pair, domain.ErrInvalidInput)
		}
		variationID, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("selection %q: variation must be a number: %w", pair, domain.ErrInvalidInput)
		}
		if err := sel.Set(doc, strings.TrimSpace(tagID), variationID); err != nil {
			return nil, err
		}
	}
	return sel, nil
}
