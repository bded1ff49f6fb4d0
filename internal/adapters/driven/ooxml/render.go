package ooxml

import (
	"fmt"
	"slices"
	"strings"
)

// scope resolves tag names against nested section data.
type scope struct {
	data   map[string]any
	item   any
	parent *scope
}

func (s *scope) lookup(name string) (any, bool) {
	for c := s; c != nil; c = c.parent {
		if name == "." {
			if c.item != nil {
				return c.item, true
			}
			continue
		}
		if v, ok := c.data[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *scope) child(item any) *scope {
	c := &scope{parent: s, item: item}
	if m, ok := item.(map[string]any); ok {
		c.data = m
	}
	return c
}

// sectionItems returns one entry per repetition of a section over v.
// Missing and empty values repeat zero times.
func sectionItems(v any, found bool) []any {
	if !found || v == nil {
		return nil
	}
	switch v := v.(type) {
	case bool:
		if v {
			return []any{nil}
		}
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []any{v}
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out
	case []any:
		return v
	default:
		return []any{v}
	}
}

func valueString(name string, v any, found bool) (string, error) {
	if !found || v == nil {
		return "", fmt.Errorf("no value for tag {%s}", name)
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case []string:
		return strings.Join(v, "\n"), nil
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("tag {%s} is a list of %T, use a section", name, item)
			}
			lines = append(lines, s)
		}
		return strings.Join(lines, "\n"), nil
	case []map[string]any, map[string]any:
		return "", fmt.Errorf("tag {%s} holds structured data, use a section", name)
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

type renderer struct {
	dialect dialect
	warn    func(format string, args ...any)
}

func (r *renderer) iterations(p part, sc *scope) []*scope {
	items := sectionItems(sc.lookup(p.name))
	if p.kind == partInverted {
		if len(items) == 0 {
			return []*scope{sc}
		}
		return nil
	}
	out := make([]*scope, len(items))
	for i, item := range items {
		out[i] = sc.child(item)
	}
	return out
}

// renderParts renders tags whose sections open and close within one text.
func (r *renderer) renderParts(parts []part, sc *scope) (string, error) {
	var b strings.Builder
	for i := 0; i < len(parts); i++ {
		p := parts[i]
		switch p.kind {
		case partLiteral:
			b.WriteString(p.text)
		case partValue:
			v, found := sc.lookup(p.name)
			s, err := valueString(p.name, v, found)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case partImage:
			r.warn("image tag {%%%s} is not supported, leaving it blank", p.name)
		case partClose:
			return "", fmt.Errorf("unopened section {/%s}", p.name)
		case partSection, partInverted:
			end := matchClose(parts, i)
			if end < 0 {
				return "", fmt.Errorf("unclosed section {#%s}", p.name)
			}
			for _, child := range r.iterations(p, sc) {
				s, err := r.renderParts(parts[i+1:end], child)
				if err != nil {
					return "", err
				}
				b.WriteString(s)
			}
			i = end
		}
	}
	return b.String(), nil
}

// textTokens turns rendered text into tokens, splitting runs at line breaks.
func (r *renderer) textTokens(t token, rendered string) []token {
	lines := strings.Split(strings.ReplaceAll(rendered, "\r\n", "\n"), "\n")
	out := make([]token, 0, 2*len(lines)-1)
	for i, line := range lines {
		if i > 0 {
			out = append(out, token{kind: tokOther, raw: t.brk})
		}
		nt := t
		nt.text = line
		out = append(out, nt)
	}
	return out
}

// blockClose finds the tag closing the section opened at toks[i] parts[open].
func blockClose(toks []token, i int, parts []part, open int) (j, closeIdx int, closeParts []part, err error) {
	name := parts[open].name
	depth := 0
	for k := i; k < len(toks); k++ {
		if !toks[k].template {
			continue
		}
		kparts, start := parts, open
		if k != i {
			kparts, err = parseParts(toks[k].text)
			if err != nil {
				return 0, 0, nil, err
			}
			start = 0
		}
		for idx := start; idx < len(kparts); idx++ {
			p := kparts[idx]
			if p.name != name {
				continue
			}
			switch p.kind {
			case partSection, partInverted:
				depth++
			case partClose:
				depth--
				if depth == 0 {
					return k, idx, kparts, nil
				}
			}
		}
	}
	return 0, 0, nil, fmt.Errorf("unclosed section {#%s}", name)
}

// onlyTag reports whether the paragraph [p0, p1] holds nothing but the tag
// at parts[idx] of token i.
func onlyTag(toks []token, p0, p1, i int, parts []part, idx int) bool {
	for k, p := range parts {
		if k != idx && (p.kind != partLiteral || strings.TrimSpace(p.text) != "") {
			return false
		}
	}
	for k := p0; k <= p1; k++ {
		if k != i && toks[k].template && strings.TrimSpace(toks[k].text) != "" {
			return false
		}
	}
	return true
}

// renderTokens renders a token range against a scope. Sections whose tags sit
// alone in their own paragraphs repeat the paragraphs between them. Sections
// spanning the cells of one table row repeat the row. Other sections repeat
// the markup between their tags in place.
//
//nolint:gocyclo // Section layout dispatch
func (r *renderer) renderTokens(in []token, sc *scope) ([]token, error) {
	toks := slices.Clone(in)
	out := make([]token, 0, len(toks))
	outAt := make([]int, len(toks))
	for k := range outAt {
		outAt[k] = -1
	}

	for i := 0; i < len(toks); i++ {
		outAt[i] = len(out)
		t := toks[i]
		if !t.template || !strings.ContainsAny(t.text, "{}") {
			out = append(out, t)
			continue
		}

		parts, err := parseParts(t.text)
		if err != nil {
			return nil, err
		}
		open, err := unclosedSection(parts)
		if err != nil {
			return nil, err
		}
		if open < 0 {
			s, err := r.renderParts(parts, sc)
			if err != nil {
				return nil, err
			}
			out = append(out, r.textTokens(t, s)...)
			continue
		}

		j, closeIdx, closeParts, err := blockClose(toks, i, parts, open)
		if err != nil {
			return nil, err
		}
		section := parts[open]
		d := r.dialect

		// Paragraph loop.
		pi0, pi1, okI := enclosing(toks, i, d.paragraph)
		pj0, pj1, okJ := enclosing(toks, j, d.paragraph)
		if okI && okJ && pi1 < pj0 &&
			onlyTag(toks, pi0, pi1, i, parts, open) && onlyTag(toks, pj0, pj1, j, closeParts, closeIdx) &&
			outAt[pi0] >= 0 {
			out = out[:outAt[pi0]]
			for _, child := range r.iterations(section, sc) {
				rendered, err := r.renderTokens(toks[pi1+1:pj0], child)
				if err != nil {
					return nil, err
				}
				out = append(out, rendered...)
			}
			i = pj1
			continue
		}

		// Table row loop.
		ri0, ri1, okRI := enclosing(toks, i, d.row)
		rj0, _, okRJ := enclosing(toks, j, d.row)
		if okRI && okRJ && ri0 == rj0 && outAt[ri0] >= 0 {
			row := slices.Clone(toks[ri0 : ri1+1])
			row[i-ri0].text = joinParts(parts[:open], parts[open+1:])
			row[j-ri0].text = joinParts(closeParts[:closeIdx], closeParts[closeIdx+1:])
			out = out[:outAt[ri0]]
			for _, child := range r.iterations(section, sc) {
				rendered, err := r.renderTokens(row, child)
				if err != nil {
					return nil, err
				}
				out = append(out, rendered...)
			}
			i = ri1
			continue
		}

		// Inline loop.
		if !balanced(toks, i, j) {
			return nil, fmt.Errorf("section {#%s} spans incompatible elements", section.name)
		}
		prefix, err := r.renderParts(parts[:open], sc)
		if err != nil {
			return nil, err
		}
		out = append(out, r.textTokens(t, prefix)...)

		head, tail := toks[i], toks[j]
		head.text = joinParts(parts[open+1:])
		tail.text = joinParts(closeParts[:closeIdx])
		inner := make([]token, 0, j-i+1)
		inner = append(inner, head)
		inner = append(inner, toks[i+1:j]...)
		inner = append(inner, tail)
		for _, child := range r.iterations(section, sc) {
			rendered, err := r.renderTokens(inner, child)
			if err != nil {
				return nil, err
			}
			out = append(out, rendered...)
		}
		toks[j].text = joinParts(closeParts[closeIdx+1:])
		i = j - 1
	}
	return out, nil
}
