package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for reportgen resources.
	uriScheme = "reportgen://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the report menu.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "report-types",
		Name:        "report-types",
		Description: "Report types and departments contents can be retrieved for",
		MIMEType:    "application/json",
	}, s.handleReportTypesResource)

	// Template for cached contents. Periods use '-' in place of '/'
	// (2024-06, Q2-2024) and "none" for marketing plans.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "contents/{type}/{period}/{department}",
		Name:        "report-contents",
		Description: "Cached contents of a report",
		MIMEType:    "application/json",
	}, s.handleContentsResource)
}

// handleReportTypesResource returns the report menu.
func (s *Server) handleReportTypesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type typeInfo struct {
		Name      string `json:"name"`
		Alias     string `json:"alias"`
		HasPeriod bool   `json:"has_period"`
		Quarterly bool   `json:"quarterly"`
	}
	menu := struct {
		Types       []typeInfo `json:"types"`
		Departments []string   `json:"departments"`
	}{Departments: domain.Departments()}

	for _, t := range domain.ReportTypes() {
		menu.Types = append(menu.Types, typeInfo{
			Name:      string(t),
			Alias:     typeAlias(t),
			HasPeriod: t.HasPeriod(),
			Quarterly: t.IsQuarterly(),
		})
	}

	data, err := json.MarshalIndent(menu, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling report types: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleContentsResource returns cached contents for a report.
func (s *Server) handleContentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	input, ok := parseContentsURI(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	reportReq, err := input.request()
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Content.Cached(ctx, reportReq)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached contents: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling contents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// parseContentsURI extracts the request from a URI like
// reportgen://contents/{type}/{period}/{department}.
func parseContentsURI(uri string) (RequestInput, bool) {
	const prefix = uriScheme + "contents/"

	if !strings.HasPrefix(uri, prefix) {
		return RequestInput{}, false
	}
	parts := strings.Split(strings.TrimPrefix(uri, prefix), "/")
	if len(parts) != 3 {
		return RequestInput{}, false
	}

	var decoded [3]string
	for i, p := range parts {
		v, err := url.PathUnescape(p)
		if err != nil || v == "" {
			return RequestInput{}, false
		}
		decoded[i] = v
	}

	period := decoded[1]
	switch {
	case strings.EqualFold(period, "none"):
		period = ""
	case strings.HasPrefix(strings.ToUpper(period), "Q"):
		period = strings.Replace(period, "-", "/", 1)
	}

	return RequestInput{Type: decoded[0], Period: period, Department: decoded[2]}, true
}

func typeAlias(t domain.ReportType) string {
	switch t {
	case domain.ReportQuarterlyBR:
		return "qbr"
	case domain.ReportMarketingPlan:
		return "mplan"
	default:
		return "monthly"
	}
}
