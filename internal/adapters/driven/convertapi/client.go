// Package convertapi provides a DOCX to PDF converter backed by ConvertAPI.
package convertapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.PDFConverter = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://v2.convertapi.com"
	DefaultTimeout = 2 * time.Minute
)

var convertLog = logger.For("convert")

// Config holds configuration for the ConvertAPI client.
type Config struct {
	BaseURL string
	Secret  string

	// RequestsPerSecond and Burst throttle submissions.
	RequestsPerSecond float64
	Burst             int

	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client converts DOCX documents to PDF.
type Client struct {
	baseURL string
	secret  string
	client  *http.Client
	limiter *RateLimiter
}

// NewClient creates a ConvertAPI client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("convertapi: secret is required: %w", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  cfg.Secret,
		client:  client,
		limiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}, nil
}

// conversionResponse is the ConvertAPI result format.
type conversionResponse struct {
	ConversionCost int `json:"ConversionCost"`
	Files          []struct {
		FileName string `json:"FileName"`
		FileSize int64  `json:"FileSize"`
		URL      string `json:"Url"`
		FileData string `json:"FileData"`
	} `json:"Files"`
}

// Convert uploads doc and downloads the converted PDF. Failures are not
// retried; a 429 makes later calls wait out the backoff.
func (c *Client) Convert(ctx context.Context, doc []byte, filename string) ([]byte, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("convertapi: empty document: %w", domain.ErrInvalidInput)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, contentType, err := multipartBody(doc, filename)
	if err != nil {
		return nil, err
	}

	// The secret travels in a header so it never appears in a request URL,
	// which net/http copies into transport errors.
	q := url.Values{}
	q.Set("StoreFile", "true")
	endpoint := c.baseURL + "/convert/docx/to/pdf?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: convertapi: send request: %w", domain.ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
	}
	if err := checkStatus(resp, "convert"); err != nil {
		return nil, err
	}

	var result conversionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: convertapi: decode response: %w", domain.ErrFetchFailure, err)
	}
	if len(result.Files) == 0 {
		return nil, fmt.Errorf("%w: convertapi: response has no files", domain.ErrFetchFailure)
	}
	file := result.Files[0]
	convertLog.Debug("converted %s -> %s (%d bytes, cost %d)", filename, file.FileName, file.FileSize, result.ConversionCost)

	if file.URL == "" {
		data, err := base64.StdEncoding.DecodeString(file.FileData)
		if err != nil || len(data) == 0 {
			return nil, fmt.Errorf("%w: convertapi: response has no file url or data", domain.ErrFetchFailure)
		}
		return data, nil
	}
	return c.download(ctx, file.URL)
}

// download fetches a stored conversion result.
func (c *Client) download(ctx context.Context, fileURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: convertapi: download: %w", domain.ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "download"); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: convertapi: read pdf: %w", domain.ErrFetchFailure, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: convertapi: empty pdf", domain.ErrFetchFailure)
	}
	return data, nil
}

func multipartBody(doc []byte, filename string) (io.Reader, string, error) {
	if filename == "" {
		filename = "document.docx"
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("File", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(doc); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func retryAfter(v string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
