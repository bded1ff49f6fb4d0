package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportgen-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

func TestNewPeriodInput(t *testing.T) {
	p := NewPeriodInput(styles.DefaultStyles())

	require.NotNil(t, p)
	assert.Empty(t, p.Value())
	assert.False(t, p.Focused())
	assert.NotNil(t, p.Init())
}

func TestNewPeriodInput_NilStyles(t *testing.T) {
	p := NewPeriodInput(nil)

	require.NotNil(t, p)
	assert.NotNil(t, p.styles)
}

func TestPeriodInput_Typing(t *testing.T) {
	p := NewPeriodInput(nil)
	p.Focus()

	for _, r := range "2024-06" {
		p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "2024-06", p.Value())
}

func TestPeriodInput_Period(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		quarterly bool
		expected  domain.Period
		wantErr   bool
	}{
		{name: "month", value: "2024 / 06", expected: domain.Period{Year: 2024, Month: 6}},
		{name: "quarter", value: "Q2/2024", quarterly: true, expected: domain.Period{Year: 2024, Quarter: 2}},
		{name: "empty", value: "", wantErr: true},
		{name: "garbage", value: "June", wantErr: true},
		{name: "quarter for monthly report", value: "Q2/2024", wantErr: true},
		{name: "month for quarterly report", value: "2024 / 06", quarterly: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPeriodInput(nil)
			p.SetQuarterly(tt.quarterly)
			p.SetValue(tt.value)

			period, err := p.Period()

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				assert.Error(t, p.Err())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, period)
			assert.NoError(t, p.Err())
		})
	}
}

func TestPeriodInput_ViewShowsError(t *testing.T) {
	p := NewPeriodInput(nil)
	p.SetValue("nope")
	_, _ = p.Period()

	assert.Contains(t, p.View(), "Period:")
	assert.Contains(t, p.View(), "invalid input")

	p.Reset()
	assert.NoError(t, p.Err())
	assert.Empty(t, p.Value())
}

func TestPeriodInput_Placeholder(t *testing.T) {
	p := NewPeriodInput(nil)
	assert.Contains(t, p.View(), "2024 / 06")

	p.SetQuarterly(true)
	assert.Contains(t, p.View(), "Q2/2024")
}
