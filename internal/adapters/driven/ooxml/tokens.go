package ooxml

import (
	"fmt"
	"html"
	"strings"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokStart
	tokEnd
	tokSelfClosing
	tokOther
)

// token is one piece of an XML part: markup or character data.
type token struct {
	kind tokenKind
	name string
	raw  string

	// text is the unescaped character data of template text tokens.
	text     string
	template bool

	// brk is the markup that ends the current text run and starts a new one
	// after a line break.
	brk string
}

// dialect names the elements of one document family.
type dialect struct {
	text      string
	paragraph string
	row       string
	run       string
	lineBreak func(runProps string) string
}

var wordDialect = dialect{
	text:      "w:t",
	paragraph: "w:p",
	row:       "w:tr",
	run:       "w:r",
	lineBreak: func(string) string { return `</w:t><w:br/><w:t xml:space="preserve">` },
}

var slideDialect = dialect{
	text:      "a:t",
	paragraph: "a:p",
	row:       "a:tr",
	run:       "a:r",
	lineBreak: func(runProps string) string { return `</a:t></a:r><a:br/><a:r>` + runProps + `<a:t>` },
}

// tokenize splits an XML part into tokens. Character data directly inside a
// text element is marked as template text.
func tokenize(src string, d dialect) ([]token, error) {
	var toks []token
	runStart := -1

	for i := 0; i < len(src); {
		if src[i] != '<' {
			j := strings.IndexByte(src[i:], '<')
			if j < 0 {
				j = len(src) - i
			}
			chunk := src[i : i+j]
			t := token{kind: tokText, raw: chunk}
			if n := len(toks); n > 0 && toks[n-1].kind == tokStart && toks[n-1].name == d.text {
				t.template = true
				t.text = html.UnescapeString(chunk)
				t.brk = d.lineBreak(runProps(toks, runStart, n-1))
			}
			toks = append(toks, t)
			i += j
			continue
		}

		end, err := markupEnd(src, i)
		if err != nil {
			return nil, err
		}
		t := classify(src[i:end])
		if t.kind == tokStart && t.name == "w:t" && t.raw == "<w:t>" {
			t.raw = `<w:t xml:space="preserve">`
		}
		if t.kind == tokStart && t.name == d.run {
			runStart = len(toks)
		}
		toks = append(toks, t)
		i = end
	}
	return toks, nil
}

// markupEnd returns the index just past the markup starting at i.
func markupEnd(src string, i int) (int, error) {
	for _, delim := range [][2]string{{"<!--", "-->"}, {"<![CDATA[", "]]>"}} {
		if strings.HasPrefix(src[i:], delim[0]) {
			j := strings.Index(src[i:], delim[1])
			if j < 0 {
				return 0, fmt.Errorf("unterminated %s at offset %d", delim[0], i)
			}
			return i + j + len(delim[1]), nil
		}
	}
	var quote byte
	for j := i + 1; j < len(src); j++ {
		c := src[j]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return j + 1, nil
		}
	}
	return 0, fmt.Errorf("unterminated markup at offset %d", i)
}

func classify(raw string) token {
	t := token{raw: raw}
	switch {
	case strings.HasPrefix(raw, "<?"), strings.HasPrefix(raw, "<!"):
		t.kind = tokOther
		return t
	case strings.HasPrefix(raw, "</"):
		t.kind = tokEnd
		t.name = elementName(raw[2:])
		return t
	case strings.HasSuffix(raw, "/>"):
		t.kind = tokSelfClosing
	default:
		t.kind = tokStart
	}
	t.name = elementName(raw[1:])
	return t
}

func elementName(s string) string {
	if i := strings.IndexAny(s, " \t\r\n/>"); i >= 0 {
		return s[:i]
	}
	return s
}

// runProps returns the markup between a run start and its text element,
// i.e. the run properties to repeat after a line break.
func runProps(toks []token, runStart, textStart int) string {
	if runStart < 0 || runStart >= textStart {
		return ""
	}
	var b strings.Builder
	for _, t := range toks[runStart+1 : textStart] {
		if t.kind == tokText {
			continue
		}
		b.WriteString(t.raw)
	}
	return b.String()
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func serialize(toks []token) string {
	var b strings.Builder
	for _, t := range toks {
		if t.template {
			b.WriteString(xmlEscaper.Replace(t.text))
			continue
		}
		b.WriteString(t.raw)
	}
	return b.String()
}

// enclosing returns the bounds of the innermost element named name that
// contains token i.
func enclosing(toks []token, i int, name string) (start, end int, ok bool) {
	start = -1
	depth := 0
	for k := i - 1; k >= 0; k-- {
		t := toks[k]
		if t.name != name {
			continue
		}
		if t.kind == tokEnd {
			depth++
		} else if t.kind == tokStart {
			if depth == 0 {
				start = k
				break
			}
			depth--
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	depth = 0
	for k := i + 1; k < len(toks); k++ {
		t := toks[k]
		if t.name != name {
			continue
		}
		if t.kind == tokStart {
			depth++
		} else if t.kind == tokEnd {
			if depth == 0 {
				return start, k, true
			}
			depth--
		}
	}
	return 0, 0, false
}

// balanced reports whether the markup strictly between tokens i and j closes
// exactly the elements it reopens, so the span can be repeated in place.
func balanced(toks []token, i, j int) bool {
	var opened, closed []string
	for _, t := range toks[i+1 : j] {
		switch t.kind {
		case tokStart:
			opened = append(opened, t.name)
		case tokEnd:
			if n := len(opened); n > 0 {
				if opened[n-1] != t.name {
					return false
				}
				opened = opened[:n-1]
			} else {
				closed = append(closed, t.name)
			}
		}
	}
	if len(opened) != len(closed) {
		return false
	}
	for k := range opened {
		if opened[k] != closed[len(closed)-1-k] {
			return false
		}
	}
	return true
}
