// Package retrieval provides the HTTP adapter for the content retrieval backend.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

// Ensure Client implements the interfaces.
var (
	_ driven.ContentSource     = (*Client)(nil)
	_ driven.ExtractionService = (*Client)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 5 * time.Minute
)

var retrievalLog = logger.For("retrieval")

// Config holds configuration for the retrieval client.
type Config struct {
	// BaseURL is the backend base URL (default: http://localhost:8000).
	BaseURL string

	// Timeout bounds non-streaming requests (default: 5m). Streams are
	// bounded only by the caller's context.
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the retrieval backend.
type Client struct {
	baseURL string
	client  *http.Client
	stream  *http.Client
}

// NewClient creates a retrieval client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Transport: base.Transport, Timeout: cfg.Timeout},
		stream:  &http.Client{Transport: base.Transport},
	}
}

type initPayload struct {
	TotalPages int `json:"total_pages"`
}

type progressPayload struct {
	Page      int `json:"page"`
	Tag       int `json:"tag"`
	TotalTags int `json:"total_tags"`
}

// StreamContents opens GET /retrieval as an event stream.
func (c *Client) StreamContents(
	ctx context.Context,
	req domain.ReportRequest,
	onEvent func(domain.RetrievalEvent) error,
) error {
	q := url.Values{}
	if !req.Period.IsZero() {
		q.Set("year", strconv.Itoa(req.Period.Year))
		q.Set("month", strconv.Itoa(req.Month()))
	}
	q.Set("department", req.Department)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/retrieval?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: open stream: %w", domain.ErrServiceFailure, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "GET /retrieval"); err != nil {
		return err
	}

	err = readEvents(resp.Body, func(ev sseEvent) error {
		out, ok, err := decodeEvent(ev)
		if err != nil {
			return err
		}
		if !ok {
			retrievalLog.Debug("ignoring %s event: %s", ev.Name, truncate(ev.Data, 120))
			return nil
		}
		return onEvent(out)
	})
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// decodeEvent converts a raw event. ok is false for events the state machine
// does not consume.
func decodeEvent(ev sseEvent) (domain.RetrievalEvent, bool, error) {
	switch domain.RetrievalEventType(ev.Name) {
	case domain.EventInit:
		var p initPayload
		if err := json.Unmarshal([]byte(ev.Data), &p); err != nil {
			return domain.RetrievalEvent{}, false, fmt.Errorf("%w: decode init event: %w", domain.ErrServiceFailure, err)
		}
		return domain.RetrievalEvent{Type: domain.EventInit, TotalPages: p.TotalPages}, true, nil
	case domain.EventProgress:
		var p progressPayload
		if err := json.Unmarshal([]byte(ev.Data), &p); err != nil {
			return domain.RetrievalEvent{}, false, fmt.Errorf("%w: decode progress event: %w", domain.ErrServiceFailure, err)
		}
		if p.Page == 0 {
			return domain.RetrievalEvent{}, false, nil
		}
		return domain.RetrievalEvent{
			Type:      domain.EventProgress,
			Page:      p.Page,
			Tag:       p.Tag,
			TotalTags: p.TotalTags,
		}, true, nil
	case domain.EventDone:
		var doc domain.DocumentContents
		if err := json.Unmarshal([]byte(ev.Data), &doc); err != nil {
			return domain.RetrievalEvent{}, false, fmt.Errorf("%w: decode done event: %w", domain.ErrServiceFailure, err)
		}
		return domain.RetrievalEvent{Type: domain.EventDone, Contents: &doc}, true, nil
	default:
		return domain.RetrievalEvent{}, false, nil
	}
}

// FetchContents retrieves the contents with POST /retrieval.
func (c *Client) FetchContents(ctx context.Context, req domain.ReportRequest) (*domain.DocumentContents, error) {
	body := map[string]any{"company": req.Department}
	if !req.Period.IsZero() {
		body["year"] = req.Period.Year
		body["month"] = req.Month()
	}
	var doc domain.DocumentContents
	if err := c.postJSON(ctx, "/retrieval", body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Extract calls POST /extraction for a fixed tag.
func (c *Client) Extract(ctx context.Context, tag string, out any) error {
	return c.postJSON(ctx, "/extraction", map[string]any{"tag": tag}, out)
}

// Retrieve calls POST /retrieval for the top-k items of a collection.
func (c *Client) Retrieve(ctx context.Context, query, collection string, k int, out any) error {
	return c.postJSON(ctx, "/retrieval", map[string]any{
		"query":      query,
		"collection": collection,
		"k":          k,
	}, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: send request: %w", domain.ErrServiceFailure, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "POST "+path); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrServiceFailure, err)
	}
	return nil
}

func checkStatus(resp *http.Response, endpoint string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		body = []byte("failed to read response")
	}
	return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Body: strings.TrimSpace(string(body))}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
