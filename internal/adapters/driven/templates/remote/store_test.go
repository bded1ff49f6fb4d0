package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/templates/page_1.docx":
			_, _ = w.Write([]byte("page one"))
		case "/templates/Monthly Sales Report_full.docx":
			_, _ = w.Write([]byte("full"))
		case "/templates/broken.docx":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Template(t *testing.T) {
	srv := newServer(t)
	s, err := New(Config{BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	data, err := s.Template(context.Background(), "page_1.docx")
	require.NoError(t, err)
	assert.Equal(t, "page one", string(data))

	data, err = s.Template(context.Background(), "Monthly Sales Report_full.docx")
	require.NoError(t, err)
	assert.Equal(t, "full", string(data))
}

func TestStore_TemplateErrors(t *testing.T) {
	srv := newServer(t)
	s, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = s.Template(context.Background(), "page_7.docx")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Template(context.Background(), "broken.docx")
	assert.ErrorIs(t, err, domain.ErrFetchFailure)
}

func TestStore_TemplateServerDown(t *testing.T) {
	srv := newServer(t)
	s, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	srv.Close()

	_, err = s.Template(context.Background(), "page_1.docx")
	assert.ErrorIs(t, err, domain.ErrFetchFailure)
}

func TestStore_TemplateCancelled(t *testing.T) {
	srv := newServer(t)
	s, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Template(ctx, "page_1.docx")
	assert.ErrorIs(t, err, context.Canceled)
}
