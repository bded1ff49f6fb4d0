package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"sort"
	"strings"
)

// VariationText is the text of a variation. The retrieval backend sends either
// a single string or an ordered list of strings; both forms are preserved.
type VariationText struct {
	lines []string
	list  bool
}

// NewTextVariation creates plain variation text.
func NewTextVariation(text string) VariationText {
	return VariationText{lines: []string{text}}
}

// NewListVariation creates list-valued variation text.
func NewListVariation(items ...string) VariationText {
	return VariationText{lines: append([]string(nil), items...), list: true}
}

// IsList reports whether the text arrived as an ordered list.
func (t VariationText) IsList() bool {
	return t.list
}

// Lines returns the list items, or a single element for plain text.
func (t VariationText) Lines() []string {
	return append([]string(nil), t.lines...)
}

// String joins list items with newlines.
func (t VariationText) String() string {
	return strings.Join(t.lines, "\n")
}

// MarshalJSON encodes plain text as a JSON string and lists as an array.
func (t VariationText) MarshalJSON() ([]byte, error) {
	if t.list {
		if t.lines == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(t.lines)
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (t *VariationText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("variation text list: %w", err)
		}
		*t = NewListVariation(items...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("variation text: %w", err)
	}
	*t = NewTextVariation(s)
	return nil
}

// Variation is one AI-generated alternative for a tag. Immutable once received.
type Variation struct {
	ID   int           `json:"id"`
	Text VariationText `json:"text"`
}

// Tag is a content slot in a page template.
type Tag struct {
	// ID is unique per document and stable across pages.
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`

	// Kind is resolved once when contents are received.
	Kind TagKind `json:"kind,omitempty"`

	// Variations is non-empty; index 0 is the default selection.
	Variations []Variation `json:"variations"`
}

// Variation returns the variation with the given id.
func (t *Tag) Variation(id int) (*Variation, error) {
	for i := range t.Variations {
		if t.Variations[i].ID == id {
			return &t.Variations[i], nil
		}
	}
	return nil, fmt.Errorf("variation %d of tag %q: %w", id, t.ID, ErrNotFound)
}

// Page is one page of a report and the tags its template contains.
type Page struct {
	PageNumber int   `json:"pageNumber"`
	Tags       []Tag `json:"tags"`
}

// Tag returns the tag with the given id on this page.
func (p *Page) Tag(id string) (*Tag, error) {
	for i := range p.Tags {
		if p.Tags[i].ID == id {
			return &p.Tags[i], nil
		}
	}
	return nil, fmt.Errorf("tag %q on page %d: %w", id, p.PageNumber, ErrNotFound)
}

// CombinationCount returns the product of the page's variation counts,
// clamped at math.MaxInt.
func (p *Page) CombinationCount() int {
	count := 1
	for i := range p.Tags {
		count = mulClamped(count, len(p.Tags[i].Variations))
	}
	return count
}

// DocumentContents is the root aggregate received from the content source.
// It is treated as immutable after fetch; a re-fetch replaces it wholesale.
type DocumentContents struct {
	Pages []Page `json:"pages"`
}

// IsEmpty reports whether no document is loaded.
func (d *DocumentContents) IsEmpty() bool {
	return d == nil || len(d.Pages) == 0
}

// Page returns the page with the given number.
func (d *DocumentContents) Page(pageNumber int) (*Page, error) {
	if d != nil {
		for i := range d.Pages {
			if d.Pages[i].PageNumber == pageNumber {
				return &d.Pages[i], nil
			}
		}
	}
	return nil, fmt.Errorf("page %d: %w", pageNumber, ErrNotFound)
}

// Tag returns the first tag with the given id on any page.
func (d *DocumentContents) Tag(id string) (*Tag, error) {
	if d != nil {
		for i := range d.Pages {
			if tag, err := d.Pages[i].Tag(id); err == nil {
				return tag, nil
			}
		}
	}
	return nil, fmt.Errorf("tag %q: %w", id, ErrNotFound)
}

// Fingerprint identifies the contents: two documents with the same pages,
// tags and variation text share a fingerprint. An empty document yields "".
func (d *DocumentContents) Fingerprint() string {
	if d.IsEmpty() {
		return ""
	}
	h := sha256.New()
	for i := range d.Pages {
		page := &d.Pages[i]
		fmt.Fprintf(h, "page %d %d\n", page.PageNumber, len(page.Tags))
		for j := range page.Tags {
			tag := &page.Tags[j]
			writeField(h, tag.ID)
			writeField(h, tag.Title)
			writeField(h, tag.Source)
			writeField(h, tag.Kind.String())
			fmt.Fprintf(h, "%d\n", len(tag.Variations))
			for _, v := range tag.Variations {
				fmt.Fprintf(h, "%d %t %d\n", v.ID, v.Text.list, len(v.Text.lines))
				for _, line := range v.Text.lines {
					writeField(h, line)
				}
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes s so adjacent fields cannot run together.
func writeField(h hash.Hash, s string) {
	fmt.Fprintf(h, "%d:%s", len(s), s)
}

// PageNumbers returns page numbers in ascending order.
func (d *DocumentContents) PageNumbers() []int {
	if d == nil {
		return nil
	}
	numbers := make([]int, 0, len(d.Pages))
	for i := range d.Pages {
		numbers = append(numbers, d.Pages[i].PageNumber)
	}
	sort.Ints(numbers)
	return numbers
}

// SortPages orders pages by page number.
func (d *DocumentContents) SortPages() {
	sort.SliceStable(d.Pages, func(i, j int) bool {
		return d.Pages[i].PageNumber < d.Pages[j].PageNumber
	})
}

// Validate checks the structural invariants of the contents.
func (d *DocumentContents) Validate() error {
	if d == nil {
		return ErrNoDocument
	}
	pages := make(map[int]bool, len(d.Pages))
	for i := range d.Pages {
		page := &d.Pages[i]
		if page.PageNumber <= 0 {
			return fmt.Errorf("page number %d must be positive: %w", page.PageNumber, ErrInvalidInput)
		}
		if pages[page.PageNumber] {
			return fmt.Errorf("duplicate page %d: %w", page.PageNumber, ErrInvalidInput)
		}
		pages[page.PageNumber] = true

		tags := make(map[string]bool, len(page.Tags))
		for j := range page.Tags {
			tag := &page.Tags[j]
			if tag.ID == "" {
				return fmt.Errorf("page %d has a tag without id: %w", page.PageNumber, ErrInvalidInput)
			}
			if tags[tag.ID] {
				return fmt.Errorf("duplicate tag %q on page %d: %w", tag.ID, page.PageNumber, ErrInvalidInput)
			}
			tags[tag.ID] = true

			if len(tag.Variations) == 0 {
				return fmt.Errorf("tag %q on page %d has no variations: %w", tag.ID, page.PageNumber, ErrInvalidInput)
			}
			ids := make(map[int]bool, len(tag.Variations))
			for _, v := range tag.Variations {
				if ids[v.ID] {
					return fmt.Errorf("duplicate variation %d on tag %q: %w", v.ID, tag.ID, ErrInvalidInput)
				}
				ids[v.ID] = true
			}
		}
	}
	return nil
}
