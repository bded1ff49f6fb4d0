package domain

import "strings"

// TagKind classifies how a tag's content is bound into templates and shown in the UI.
type TagKind string

// Supported tag kinds.
const (
	// TagKindPlainText binds the variation as a single string.
	TagKindPlainText TagKind = "plain_text"

	// TagKindBulletList binds the variation as an ordered list of items.
	TagKindBulletList TagKind = "bullet_list"

	// TagKindChart marks data rendered as a chart by the template.
	TagKindChart TagKind = "chart"
)

// IsValid returns true if the kind is recognised.
func (k TagKind) IsValid() bool {
	switch k {
	case TagKindPlainText, TagKindBulletList, TagKindChart:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k TagKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k TagKind) Description() string {
	switch k {
	case TagKindPlainText:
		return "Text"
	case TagKindBulletList:
		return "Bullet list"
	case TagKindChart:
		return "Chart"
	default:
		return "Unknown"
	}
}

// TagClassifier resolves the kind of each tag once, when contents arrive.
type TagClassifier struct {
	// BulletMarkers are substrings of tag ids that mark bullet lists.
	BulletMarkers []string

	// ChartMarkers are substrings of tag ids that mark charts.
	ChartMarkers []string
}

// DefaultTagClassifier returns the classifier matching the report templates.
func DefaultTagClassifier() TagClassifier {
	return TagClassifier{
		BulletMarkers: []string{"bullet"},
		ChartMarkers:  []string{"chart"},
	}
}

// Classify returns the kind for a tag. A kind already set on the tag wins.
func (c TagClassifier) Classify(tag *Tag) TagKind {
	if tag.Kind.IsValid() {
		return tag.Kind
	}
	id := strings.ToLower(tag.ID)
	if containsAny(id, c.ChartMarkers) {
		return TagKindChart
	}
	if containsAny(id, c.BulletMarkers) {
		return TagKindBulletList
	}
	for _, v := range tag.Variations {
		if v.Text.IsList() {
			return TagKindBulletList
		}
	}
	return TagKindPlainText
}

// Apply sets the kind of every tag in the document.
func (c TagClassifier) Apply(doc *DocumentContents) {
	if doc == nil {
		return
	}
	for i := range doc.Pages {
		for j := range doc.Pages[i].Tags {
			tag := &doc.Pages[i].Tags[j]
			tag.Kind = c.Classify(tag)
		}
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
