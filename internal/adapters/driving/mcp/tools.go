package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// defaultListLimit bounds list_combinations output when no limit is given.
const defaultListLimit = 100

// RequestInput identifies the report whose contents a tool works on.
type RequestInput struct {
	Type       string `json:"type,omitempty" jsonschema:"report type: monthly, qbr or mplan (default monthly)"`
	Period     string `json:"period,omitempty" jsonschema:"period such as 2024 / 06 or Q2/2024; empty for marketing plans"`
	Department string `json:"department,omitempty" jsonschema:"department (default Media & Electronics)"`
}

// FetchInput is the input schema for the fetch_contents tool.
type FetchInput struct {
	RequestInput
	Refresh bool `json:"refresh,omitempty" jsonschema:"retrieve again even when contents are cached"`
}

// FetchOutput is the output schema for the fetch_contents tool.
type FetchOutput struct {
	Pages             []PageOutput `json:"pages"`
	TotalCombinations int          `json:"total_combinations"`
}

// PageOutput summarises one page.
type PageOutput struct {
	PageNumber   int         `json:"page_number"`
	Combinations int         `json:"combinations"`
	Tags         []TagOutput `json:"tags"`
}

// TagOutput lists a tag's variations in id order.
type TagOutput struct {
	ID         string            `json:"id"`
	Title      string            `json:"title,omitempty"`
	Kind       string            `json:"kind"`
	Variations []VariationOutput `json:"variations"`
}

// VariationOutput is one variation's text.
type VariationOutput struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// ListCombinationsInput is the input schema for the list_combinations tool.
type ListCombinationsInput struct {
	RequestInput
	Page  int `json:"page,omitempty" jsonschema:"only list this page"`
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of keys to return (default 100)"`
}

// ListCombinationsOutput is the output schema for the list_combinations tool.
type ListCombinationsOutput struct {
	Keys  []string `json:"keys"`
	Total int      `json:"total"`
}

// CombinationKeyInput is the input schema for the combination_key tool.
type CombinationKeyInput struct {
	RequestInput
	Page      int            `json:"page" jsonschema:"page number"`
	Selection map[string]int `json:"selection,omitempty" jsonschema:"variation id per tag id; absent tags take variation 0"`
}

// CombinationKeyOutput is the output schema for the combination_key tool.
type CombinationKeyOutput struct {
	Key string `json:"key"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_contents",
		Description: "Retrieve the AI-generated variations for every tag of a report",
	}, s.handleFetchContents)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_combinations",
		Description: "List the artifact keys of every page combination of a report",
	}, s.handleListCombinations)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "combination_key",
		Description: "Derive the artifact key for a page under a variation selection",
	}, s.handleCombinationKey)
}

// handleFetchContents handles the fetch_contents tool invocation.
func (s *Server) handleFetchContents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FetchInput,
) (*mcp.CallToolResult, FetchOutput, error) {
	doc, err := s.contents(ctx, input.RequestInput, input.Refresh)
	if err != nil {
		return nil, FetchOutput{}, err
	}

	output := FetchOutput{
		Pages:             make([]PageOutput, 0, len(doc.Pages)),
		TotalCombinations: domain.CountCombinations(doc),
	}
	for _, pageNumber := range doc.PageNumbers() {
		page, _ := doc.Page(pageNumber)
		po := PageOutput{
			PageNumber:   pageNumber,
			Combinations: page.CombinationCount(),
			Tags:         make([]TagOutput, len(page.Tags)),
		}
		for i := range page.Tags {
			tag := &page.Tags[i]
			to := TagOutput{
				ID:         tag.ID,
				Title:      tag.Title,
				Kind:       tag.Kind.String(),
				Variations: make([]VariationOutput, len(tag.Variations)),
			}
			for j, v := range tag.Variations {
				to.Variations[j] = VariationOutput{ID: v.ID, Text: v.Text.String()}
			}
			po.Tags[i] = to
		}
		output.Pages = append(output.Pages, po)
	}

	return nil, output, nil
}

// handleListCombinations handles the list_combinations tool invocation.
func (s *Server) handleListCombinations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListCombinationsInput,
) (*mcp.CallToolResult, ListCombinationsOutput, error) {
	doc, err := s.contents(ctx, input.RequestInput, false)
	if err != nil {
		return nil, ListCombinationsOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	output := ListCombinationsOutput{Keys: []string{}}
	pages := doc.PageNumbers()
	if input.Page != 0 {
		page, err := doc.Page(input.Page)
		if err != nil {
			return nil, ListCombinationsOutput{}, err
		}
		pages = []int{input.Page}
		output.Total = page.CombinationCount()
	} else {
		output.Total = domain.CountCombinations(doc)
	}

	for _, pageNumber := range pages {
		remaining := limit - len(output.Keys)
		if remaining <= 0 {
			break
		}
		page, err := doc.Page(pageNumber)
		if err != nil {
			return nil, ListCombinationsOutput{}, err
		}
		for _, combo := range domain.EnumeratePage(page, remaining) {
			key, err := domain.CombinationKey(pageNumber, combo, doc)
			if err != nil {
				return nil, ListCombinationsOutput{}, err
			}
			output.Keys = append(output.Keys, key)
		}
	}

	return nil, output, nil
}

// handleCombinationKey handles the combination_key tool invocation.
func (s *Server) handleCombinationKey(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CombinationKeyInput,
) (*mcp.CallToolResult, CombinationKeyOutput, error) {
	doc, err := s.contents(ctx, input.RequestInput, false)
	if err != nil {
		return nil, CombinationKeyOutput{}, err
	}

	page, err := doc.Page(input.Page)
	if err != nil {
		return nil, CombinationKeyOutput{}, err
	}
	sel := domain.Selection(input.Selection)
	combo := sel.ForPage(page)
	if err := domain.ValidateCombination(page, combo); err != nil {
		return nil, CombinationKeyOutput{}, err
	}
	key, err := domain.CombinationKey(input.Page, combo, doc)
	if err != nil {
		return nil, CombinationKeyOutput{}, err
	}

	return nil, CombinationKeyOutput{Key: key}, nil
}

// contents returns cached contents, retrieving them when absent or refresh is set.
func (s *Server) contents(ctx context.Context, input RequestInput, refresh bool) (*domain.DocumentContents, error) {
	req, err := input.request()
	if err != nil {
		return nil, err
	}
	if !refresh {
		doc, err := s.ports.Content.Cached(ctx, req)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	doc, err := s.ports.Content.Fetch(ctx, req, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching contents: %w", err)
	}
	return doc, nil
}

func (in RequestInput) request() (domain.ReportRequest, error) {
	reportType, err := domain.ParseReportType(in.Type)
	if err != nil {
		return domain.ReportRequest{}, err
	}
	period, err := domain.ParsePeriod(in.Period)
	if err != nil {
		return domain.ReportRequest{}, err
	}
	department := in.Department
	if department == "" {
		department = domain.DefaultDepartment
	}
	req := domain.ReportRequest{Type: reportType, Period: period, Department: department}
	return req, req.Validate()
}
