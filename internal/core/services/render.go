package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

var renderLog = logger.For("render")

// RenderPipeline produces the artifact for one page combination:
// fetch the page template, bind the selected variations, render, convert.
type RenderPipeline struct {
	templates driven.TemplateStore
	renderer  driven.DocumentRenderer
	converter driven.PDFConverter

	skipConversion bool
	now            func() time.Time
}

// NewRenderPipeline creates a render pipeline.
// The converter is optional - if nil, artifacts carry only the DOCX.
func NewRenderPipeline(
	templates driven.TemplateStore,
	renderer driven.DocumentRenderer,
	converter driven.PDFConverter,
) *RenderPipeline {
	return &RenderPipeline{
		templates: templates,
		renderer:  renderer,
		converter: converter,
		now:       time.Now,
	}
}

// SetSkipConversion disables the PDF step.
func (p *RenderPipeline) SetSkipConversion(skip bool) {
	p.skipConversion = skip
}

// ConvertsToPDF reports whether artifacts will carry a PDF.
func (p *RenderPipeline) ConvertsToPDF() bool {
	return p.converter != nil && !p.skipConversion
}

// RenderCombination renders one (page, combination). Every failure is a
// *domain.CombinationError naming the page and combination.
func (p *RenderPipeline) RenderCombination(
	ctx context.Context,
	doc *domain.DocumentContents,
	pageNumber int,
	combo domain.Combination,
) (*domain.Artifact, error) {
	fail := func(key string, err error) error {
		return &domain.CombinationError{
			PageNumber:  pageNumber,
			Key:         key,
			Combination: combo,
			Err:         err,
		}
	}

	page, err := doc.Page(pageNumber)
	if err != nil {
		return nil, fail("", err)
	}
	key, err := domain.CombinationKey(pageNumber, combo, doc)
	if err != nil {
		return nil, fail("", err)
	}
	if err := domain.ValidateCombination(page, combo); err != nil {
		return nil, fail(key, err)
	}

	data, err := BindPage(page, combo)
	if err != nil {
		return nil, fail(key, err)
	}

	name := domain.PageTemplateName(pageNumber)
	tmpl, err := p.templates.Template(ctx, name)
	if err != nil {
		return nil, fail(key, asFetchFailure("fetch template "+name, err))
	}

	rendered, err := p.renderer.Render(tmpl, data)
	if err != nil {
		return nil, fail(key, asRenderFailure("render "+name, err))
	}

	artifact := &domain.Artifact{
		Key:         key,
		PageNumber:  pageNumber,
		Combination: combo.Clone(),
		DOCX:        rendered,
		CreatedAt:   p.now(),
	}

	if p.ConvertsToPDF() {
		pdf, err := p.converter.Convert(ctx, rendered, key+domain.FormatDOCX.Extension())
		if err != nil {
			return nil, fail(key, asFetchFailure("convert "+key, err))
		}
		artifact.PDF = pdf
	}

	renderLog.Debug("rendered %s (%d bytes docx, %d bytes pdf)", key, len(artifact.DOCX), len(artifact.PDF))
	return artifact, nil
}

// BindPage builds the template data for a page combination. Bullet lists bind
// as string slices, everything else as a single string.
func BindPage(page *domain.Page, combo domain.Combination) (map[string]any, error) {
	data := make(map[string]any, len(page.Tags))
	for i := range page.Tags {
		tag := &page.Tags[i]
		v, err := tag.Variation(combo.VariationFor(tag.ID))
		if err != nil {
			return nil, err
		}
		if tag.Kind == domain.TagKindBulletList {
			data[tag.ID] = v.Text.Lines()
		} else {
			data[tag.ID] = v.Text.String()
		}
	}
	return data, nil
}

// asFetchFailure tags err as a fetch failure unless it already carries a
// classification the caller must see.
func asFetchFailure(op string, err error) error {
	if errors.Is(err, domain.ErrFetchFailure) || errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrFetchFailure, op, err)
}

func asRenderFailure(op string, err error) error {
	if errors.Is(err, domain.ErrRenderFailure) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrRenderFailure, op, err)
}
