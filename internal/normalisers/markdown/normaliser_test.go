package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestListItems(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "dash list",
			in:   "- Revenue up 12%\n- Churn down\n- New **enterprise** deals",
			want: []string{"Revenue up 12%", "Churn down", "New enterprise deals"},
		},
		{
			name: "numbered list",
			in:   "1. First\n2. Second",
			want: []string{"First", "Second"},
		},
		{
			name: "intro paragraph is dropped",
			in:   "Highlights:\n\n* one\n* two",
			want: []string{"one", "two"},
		},
		{
			name: "nested items stay with parent",
			in:   "- parent\n  - child\n- sibling",
			want: []string{"parent", "sibling"},
		},
		{
			name: "links keep their text",
			in:   "- see [the report](http://example.com)",
			want: []string{"see the report"},
		},
		{
			name: "no list falls back to lines",
			in:   "first line\nsecond line\n\nthird",
			want: []string{"first line", "second line", "third"},
		},
		{
			name: "empty",
			in:   "  \n",
			want: nil,
		},
	}

	n := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.ListItems(tt.in))
		})
	}
}

func TestListItems_OnlyFirstList(t *testing.T) {
	got := New().ListItems("- a\n- b\n\nText\n\n- c")
	assert.Equal(t, []string{"a", "b"}, got)
}
