package services

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

var documentLog = logger.For("document")

// DocumentService renders the complete report with the user's selections.
type DocumentService struct {
	templates driven.TemplateStore
	renderer  driven.DocumentRenderer
	converter driven.PDFConverter
}

// NewDocumentService creates a new document service.
// The converter is optional - without it only DOCX downloads are possible.
func NewDocumentService(
	templates driven.TemplateStore,
	renderer driven.DocumentRenderer,
	converter driven.PDFConverter,
) *DocumentService {
	return &DocumentService{
		templates: templates,
		renderer:  renderer,
		converter: converter,
	}
}

// RenderFull binds every page's selected variation into the full-document
// template. Tags absent from the selection use the default variation.
func (s *DocumentService) RenderFull(
	ctx context.Context,
	reportType domain.ReportType,
	doc *domain.DocumentContents,
	sel domain.Selection,
	format domain.Format,
) ([]byte, error) {
	if doc.IsEmpty() {
		return nil, domain.ErrNoDocument
	}
	if !reportType.IsValid() {
		return nil, fmt.Errorf("report type %q: %w", reportType, domain.ErrInvalidInput)
	}
	if format != domain.FormatDOCX && format != domain.FormatPDF {
		return nil, fmt.Errorf("format %q: %w", format, domain.ErrInvalidInput)
	}
	if format == domain.FormatPDF && s.converter == nil {
		return nil, fmt.Errorf("pdf download needs conversion.secret: %w", domain.ErrInvalidInput)
	}

	data, err := BindDocument(doc, sel)
	if err != nil {
		return nil, err
	}

	name := reportType.FullTemplateName()
	tmpl, err := s.templates.Template(ctx, name)
	if err != nil {
		return nil, asFetchFailure("fetch template "+name, err)
	}

	rendered, err := s.renderer.Render(tmpl, data)
	if err != nil {
		return nil, asRenderFailure("render "+name, err)
	}
	documentLog.Info("rendered %s (%d bytes)", name, len(rendered))

	if format == domain.FormatDOCX {
		return rendered, nil
	}

	pdf, err := s.converter.Convert(ctx, rendered, "document"+domain.FormatDOCX.Extension())
	if err != nil {
		return nil, asFetchFailure("convert "+name, err)
	}
	return pdf, nil
}

// Open opens a downloaded file in the default application.
func (s *DocumentService) Open(path string) error {
	return openURL(path)
}

// BindDocument builds template data covering every page of the document.
// When two pages share a tag id the later page wins.
func BindDocument(doc *domain.DocumentContents, sel domain.Selection) (map[string]any, error) {
	data := make(map[string]any)
	for i := range doc.Pages {
		page := &doc.Pages[i]
		combo := sel.ForPage(page)
		if err := domain.ValidateCombination(page, combo); err != nil {
			return nil, fmt.Errorf("page %d: %w", page.PageNumber, err)
		}
		pageData, err := BindPage(page, combo)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page.PageNumber, err)
		}
		for k, v := range pageData {
			if _, dup := data[k]; dup {
				documentLog.Warn("tag %q appears on more than one page; page %d wins", k, page.PageNumber)
			}
			data[k] = v
		}
	}
	return data, nil
}

// openURL opens a URL/path using the system default handler.
func openURL(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
