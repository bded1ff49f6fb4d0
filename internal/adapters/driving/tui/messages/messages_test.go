package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewMenu, "menu"},
		{ViewSelector, "selector"},
		{ViewVariations, "variations"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_Ordering(t *testing.T) {
	// ViewMenu is the zero value so a fresh app starts on the menu.
	var v ViewType
	assert.Equal(t, ViewMenu, v)
}
