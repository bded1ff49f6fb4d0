package driven

import "context"

// TemplateStore loads binary document templates by name,
// e.g. "page_3.docx" or "sales_report_full.docx".
type TemplateStore interface {
	// Template returns the template bytes. Missing templates return an error
	// wrapping domain.ErrNotFound; transport failures wrap domain.ErrFetchFailure.
	Template(ctx context.Context, name string) ([]byte, error)
}

// DocumentRenderer fills a template's placeholders with data.
type DocumentRenderer interface {
	// Render binds data into template and returns the resulting document.
	// Values are strings, string slices (rendered as line breaks or loops)
	// or slices of maps (rendered by loop sections).
	Render(template []byte, data map[string]any) ([]byte, error)
}

// PDFConverter converts a document to PDF through an external service.
type PDFConverter interface {
	// Convert uploads doc under filename and returns the PDF bytes.
	// Failures wrap domain.ErrFetchFailure and are never retried here.
	Convert(ctx context.Context, doc []byte, filename string) ([]byte, error)
}
