// Package markdown turns markdown-formatted variation text into list items.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/reportgen-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextNormaliser = (*Normaliser)(nil)

// Normaliser parses variation text with goldmark.
type Normaliser struct {
	md goldmark.Markdown
}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{md: goldmark.New()}
}

// ListItems returns the top-level items of the first list in text, with
// inline markup removed. Text without a list yields one item per non-empty
// line.
func (n *Normaliser) ListItems(src string) []string {
	source := []byte(src)
	doc := n.md.Parser().Parse(text.NewReader(source))

	var items []string
	var paragraphs []string
	found := false

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := node.(type) {
		case *ast.List:
			if found {
				return ast.WalkSkipChildren, nil
			}
			found = true
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				if t := strings.TrimSpace(inlineText(item, source, " ")); t != "" {
					items = append(items, t)
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.Heading:
			paragraphs = append(paragraphs, inlineText(node, source, "\n"))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	if found {
		return items
	}

	var lines []string
	for _, p := range paragraphs {
		for _, line := range strings.Split(p, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// inlineText concatenates the text under node, skipping nested lists.
// Soft line breaks are replaced with lineBreak.
func inlineText(node ast.Node, source []byte, lineBreak string) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.List:
			if n != node {
				return ast.WalkSkipChildren, nil
			}
		case *ast.Text:
			buf.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				buf.WriteString(lineBreak)
			}
		case *ast.String:
			buf.Write(n.Value)
		case *ast.Paragraph, *ast.TextBlock:
			if n != node && buf.Len() > 0 {
				buf.WriteString(lineBreak)
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
