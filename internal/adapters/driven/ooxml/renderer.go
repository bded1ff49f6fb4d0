// Package ooxml renders DOCX and PPTX templates by filling {tag}
// placeholders in the document XML.
//
// Supported tags:
//
//	{name}            value; lists and newlines become line breaks
//	{#name}...{/name} section, repeated per list item or shown when truthy
//	{^name}...{/name} inverted section, shown when name is empty or missing
//	{%name}           image; rendered blank
package ooxml

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reportgen-cli/internal/logger"
)

// Ensure Renderer implements the interface.
var _ driven.DocumentRenderer = (*Renderer)(nil)

var ooxmlLog = logger.For("ooxml")

var (
	wordParts  = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes)\.xml$`)
	slideParts = regexp.MustCompile(`^ppt/slides/slide\d+\.xml$`)
)

// RenderError reports a template part that could not be rendered.
type RenderError struct {
	Part string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Part, e.Err)
}

// Unwrap exposes both the render failure classification and the cause.
func (e *RenderError) Unwrap() []error {
	return []error{domain.ErrRenderFailure, e.Err}
}

// Renderer renders Office Open XML templates. Missing values are errors.
type Renderer struct{}

// New creates a renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render fills the template's placeholders with data and returns the new
// document. Parts without placeholders are copied unchanged.
func (r *Renderer) Render(template []byte, data map[string]any) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("%w: open template: %w", domain.ErrRenderFailure, err)
	}

	d, parts, ok := detect(zr)
	if !ok {
		return nil, fmt.Errorf("%w: template is neither a word document nor a presentation", domain.ErrRenderFailure)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	root := &scope{data: data}

	for _, f := range zr.File {
		if !parts.MatchString(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("%w: copy %s: %w", domain.ErrRenderFailure, f.Name, err)
			}
			continue
		}

		content, err := readFile(f)
		if err != nil {
			return nil, &RenderError{Part: f.Name, Err: err}
		}
		rendered, err := renderPart(content, d, root)
		if err != nil {
			return nil, &RenderError{Part: f.Name, Err: err}
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, &RenderError{Part: f.Name, Err: err}
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return nil, &RenderError{Part: f.Name, Err: err}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: finish document: %w", domain.ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}

func detect(zr *zip.Reader) (dialect, *regexp.Regexp, bool) {
	for _, f := range zr.File {
		switch f.Name {
		case "word/document.xml":
			return wordDialect, wordParts, true
		case "ppt/presentation.xml":
			return slideDialect, slideParts, true
		}
	}
	return dialect{}, nil, false
}

func readFile(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func renderPart(src string, d dialect, root *scope) (string, error) {
	toks, err := tokenize(src, d)
	if err != nil {
		return "", err
	}
	if err := mergeSplitTags(toks, d); err != nil {
		return "", err
	}
	r := &renderer{dialect: d, warn: ooxmlLog.Warn}
	out, err := r.renderTokens(toks, root)
	if err != nil {
		return "", err
	}
	return serialize(out), nil
}
