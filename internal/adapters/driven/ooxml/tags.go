package ooxml

import (
	"fmt"
	"strings"
)

type partKind int

const (
	partLiteral  partKind = iota
	partValue             // {name}
	partSection           // {#name}
	partInverted          // {^name}
	partClose             // {/name}
	partImage             // {%name}
)

type part struct {
	kind partKind
	name string
	text string
}

func (p part) String() string {
	switch p.kind {
	case partValue:
		return "{" + p.name + "}"
	case partSection:
		return "{#" + p.name + "}"
	case partInverted:
		return "{^" + p.name + "}"
	case partClose:
		return "{/" + p.name + "}"
	case partImage:
		return "{%" + p.name + "}"
	default:
		return p.text
	}
}

func joinParts(groups ...[]part) string {
	var b strings.Builder
	for _, parts := range groups {
		for _, p := range parts {
			b.WriteString(p.String())
		}
	}
	return b.String()
}

// parseParts splits text into literals and tags.
func parseParts(text string) ([]part, error) {
	var parts []part
	for text != "" {
		open := strings.IndexByte(text, '{')
		if closeIdx := strings.IndexByte(text, '}'); closeIdx >= 0 && (open < 0 || closeIdx < open) {
			return nil, fmt.Errorf("unopened tag before %q", text[:closeIdx+1])
		}
		if open < 0 {
			parts = append(parts, part{kind: partLiteral, text: text})
			break
		}
		if open > 0 {
			parts = append(parts, part{kind: partLiteral, text: text[:open]})
		}
		end := strings.IndexByte(text[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unclosed tag %q", text[open:])
		}
		p, err := parseTag(text[open+1 : open+end])
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
		text = text[open+end+1:]
	}
	return parts, nil
}

func parseTag(inner string) (part, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return part{}, fmt.Errorf("empty tag {}")
	}
	kind := partValue
	switch inner[0] {
	case '#':
		kind = partSection
	case '^':
		kind = partInverted
	case '/':
		kind = partClose
	case '%':
		kind = partImage
	}
	name := inner
	if kind != partValue {
		name = strings.TrimSpace(inner[1:])
	}
	if name == "" || strings.ContainsAny(name, "{") {
		return part{}, fmt.Errorf("malformed tag {%s}", inner)
	}
	return part{kind: kind, name: name}, nil
}

// mergeSplitTags moves every tag into the text token where it starts. Word
// processors split a typed "{name}" across runs when formatting or spell
// checking touches it.
func mergeSplitTags(toks []token, d dialect) error {
	owner := -1
	for i := range toks {
		t := &toks[i]
		if t.kind == tokEnd && t.name == d.paragraph && owner >= 0 {
			return fmt.Errorf("unclosed tag %q", toks[owner].text[strings.LastIndexByte(toks[owner].text, '{'):])
		}
		if !t.template {
			continue
		}

		var keep strings.Builder
		for _, r := range t.text {
			if r == '{' && owner >= 0 {
				return fmt.Errorf("nested '{' in tag")
			}
			if owner >= 0 && owner != i {
				toks[owner].text += string(r)
			} else {
				keep.WriteRune(r)
			}
			switch r {
			case '{':
				owner = i
			case '}':
				if owner < 0 {
					return fmt.Errorf("unopened tag in %q", t.text)
				}
				owner = -1
			}
		}
		t.text = keep.String()
	}
	if owner >= 0 {
		return fmt.Errorf("unclosed tag at end of part")
	}
	return nil
}

// unclosedSection returns the index of the outermost section tag whose
// closing tag is not in parts, or -1.
func unclosedSection(parts []part) (int, error) {
	var stack []int
	for i, p := range parts {
		switch p.kind {
		case partSection, partInverted:
			stack = append(stack, i)
		case partClose:
			n := len(stack)
			if n == 0 {
				return -1, fmt.Errorf("unopened section {/%s}", p.name)
			}
			if parts[stack[n-1]].name != p.name {
				return -1, fmt.Errorf("section {#%s} closed by {/%s}", parts[stack[n-1]].name, p.name)
			}
			stack = stack[:n-1]
		}
	}
	if len(stack) == 0 {
		return -1, nil
	}
	return stack[0], nil
}

// matchClose returns the index of the part closing the section at i.
func matchClose(parts []part, i int) int {
	depth := 0
	for k := i; k < len(parts); k++ {
		p := parts[k]
		if p.name != parts[i].name {
			continue
		}
		switch p.kind {
		case partSection, partInverted:
			depth++
		case partClose:
			depth--
			if depth == 0 {
				return k
			}
		}
	}
	return -1
}
