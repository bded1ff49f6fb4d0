package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultVariationID is the variation used for a tag with no explicit choice.
const DefaultVariationID = 0

// Combination maps tag id to chosen variation id for one page.
type Combination map[string]int

// Clone returns a copy of the combination.
func (c Combination) Clone() Combination {
	out := make(Combination, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// VariationFor returns the chosen variation id, applying DefaultVariationID
// when the tag is absent.
func (c Combination) VariationFor(tagID string) int {
	if id, ok := c[tagID]; ok {
		return id
	}
	return DefaultVariationID
}

// String renders the combination with tag ids sorted, for logs.
func (c Combination) String() string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+"="+strconv.Itoa(c[id]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// EnumerateCombinations returns, for every page, the Cartesian product of its
// tags' variation choices. A page without tags yields one empty combination.
func EnumerateCombinations(doc *DocumentContents) map[int][]Combination {
	result := make(map[int][]Combination)
	if doc == nil {
		return result
	}
	for i := range doc.Pages {
		page := &doc.Pages[i]
		result[page.PageNumber] = enumeratePage(page)
	}
	return result
}

func enumeratePage(page *Page) []Combination {
	combos := []Combination{{}}
	for i := range page.Tags {
		tag := &page.Tags[i]
		next := make([]Combination, 0, len(combos)*len(tag.Variations))
		for _, partial := range combos {
			for _, v := range tag.Variations {
				c := partial.Clone()
				c[tag.ID] = v.ID
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos
}

// EnumeratePage returns at most limit combinations of one page, in the order
// EnumerateCombinations yields them. A limit <= 0 returns every combination.
// Only the returned combinations are built, so a small limit stays cheap on
// pages whose full product is huge.
func EnumeratePage(page *Page, limit int) []Combination {
	if limit <= 0 {
		return enumeratePage(page)
	}
	for i := range page.Tags {
		if len(page.Tags[i].Variations) == 0 {
			return nil
		}
	}

	out := make([]Combination, 0, min(limit, page.CombinationCount()))
	idx := make([]int, len(page.Tags))
	for len(out) < limit {
		c := make(Combination, len(page.Tags))
		for i := range page.Tags {
			c[page.Tags[i].ID] = page.Tags[i].Variations[idx[i]].ID
		}
		out = append(out, c)

		// The last tag varies fastest.
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(page.Tags[i].Variations) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return out
}

// CountCombinations returns the total number of combinations across all
// pages, clamped at math.MaxInt so size guards still trip on huge documents.
func CountCombinations(doc *DocumentContents) int {
	if doc == nil {
		return 0
	}
	total := 0
	for i := range doc.Pages {
		total = addClamped(total, doc.Pages[i].CombinationCount())
	}
	return total
}

func mulClamped(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}

func addClamped(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// CombinationKey derives the artifact key for a page combination:
// page<N>_<tagId>-<variationId>_<tagId>-<variationId>...
//
// Tags are visited in page order and absent tags take DefaultVariationID, so a
// key computed from an interactive selection matches the one produced during
// exhaustive generation. An empty document yields "" for any page; callers
// treat that as "no document loaded".
func CombinationKey(pageNumber int, combo Combination, doc *DocumentContents) (string, error) {
	if doc.IsEmpty() {
		return "", nil
	}
	page, err := doc.Page(pageNumber)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("page")
	b.WriteString(strconv.Itoa(pageNumber))
	b.WriteByte('_')
	for i := range page.Tags {
		if i > 0 {
			b.WriteByte('_')
		}
		tag := &page.Tags[i]
		b.WriteString(tag.ID)
		b.WriteByte('-')
		b.WriteString(strconv.Itoa(combo.VariationFor(tag.ID)))
	}
	return b.String(), nil
}

// ValidateCombination checks every tag and variation the combination names
// exists on the page, so wrong content is never bound silently.
func ValidateCombination(page *Page, combo Combination) error {
	for tagID, variationID := range combo {
		tag, err := page.Tag(tagID)
		if err != nil {
			return err
		}
		if _, err := tag.Variation(variationID); err != nil {
			return err
		}
	}
	for i := range page.Tags {
		tag := &page.Tags[i]
		if _, ok := combo[tag.ID]; ok {
			continue
		}
		if _, err := tag.Variation(DefaultVariationID); err != nil {
			return fmt.Errorf("default for tag %q: %w", tag.ID, err)
		}
	}
	return nil
}
