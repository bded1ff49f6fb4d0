package retrieval

import (
	"fmt"
	"net/http"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

// APIError is a non-2xx response from the retrieval backend.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("retrieval %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Unwrap classifies the error in the domain taxonomy.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return domain.ErrServiceFailure
	}
}
