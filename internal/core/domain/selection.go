package domain

import "fmt"

// Selection maps tag id to the chosen Variation.ID in the interactive flow.
// Tags without an entry take DefaultVariationID.
type Selection map[string]int

// DefaultSelection selects the first variation of every tag.
func DefaultSelection(doc *DocumentContents) Selection {
	sel := make(Selection)
	if doc == nil {
		return sel
	}
	for i := range doc.Pages {
		for j := range doc.Pages[i].Tags {
			tag := &doc.Pages[i].Tags[j]
			if len(tag.Variations) > 0 {
				sel[tag.ID] = tag.Variations[0].ID
			}
		}
	}
	return sel
}

// Set chooses a variation for a tag after checking both exist in the document.
func (s Selection) Set(doc *DocumentContents, tagID string, variationID int) error {
	tag, err := doc.Tag(tagID)
	if err != nil {
		return err
	}
	if _, err := tag.Variation(variationID); err != nil {
		return err
	}
	s[tagID] = variationID
	return nil
}

// ForPage returns the page's combination, filling absent tags explicitly with
// DefaultVariationID.
func (s Selection) ForPage(page *Page) Combination {
	combo := make(Combination, len(page.Tags))
	for i := range page.Tags {
		id := page.Tags[i].ID
		if v, ok := s[id]; ok {
			combo[id] = v
		} else {
			combo[id] = DefaultVariationID
		}
	}
	return combo
}

// Cycle moves a tag's choice to the next (or previous when step is negative)
// variation, wrapping around.
func (s Selection) Cycle(doc *DocumentContents, tagID string, step int) (int, error) {
	tag, err := doc.Tag(tagID)
	if err != nil {
		return 0, err
	}
	n := len(tag.Variations)
	if n == 0 {
		return 0, fmt.Errorf("tag %q has no variations: %w", tagID, ErrInvalidInput)
	}
	current := 0
	chosen := s[tagID]
	for i, v := range tag.Variations {
		if v.ID == chosen {
			current = i
			break
		}
	}
	next := ((current+step)%n + n) % n
	s[tagID] = tag.Variations[next].ID
	return s[tagID], nil
}

// Clone returns a copy of the selection.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
