package convertapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// APIError is a non-2xx response from ConvertAPI.
type APIError struct {
	StatusCode int
	Operation  string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("convertapi %s: status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Unwrap classifies the error in the domain taxonomy.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	return domain.ErrFetchFailure
}

func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		body = []byte("failed to read response")
	}
	return &APIError{StatusCode: resp.StatusCode, Operation: op, Body: strings.TrimSpace(string(body))}
}
