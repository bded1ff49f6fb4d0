package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNoDocument", ErrNoDocument},
		{"ErrFetchFailure", ErrFetchFailure},
		{"ErrRenderFailure", ErrRenderFailure},
		{"ErrServiceFailure", ErrServiceFailure},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrGenerationSuperseded", ErrGenerationSuperseded},
		{"ErrTooManyCombinations", ErrTooManyCombinations},
		{"ErrInvalidTransition", ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("convert: %w", ErrFetchFailure)))
	assert.True(t, IsTransient(ErrServiceFailure))
	assert.True(t, IsTransient(ErrRateLimited))
	assert.False(t, IsTransient(ErrRenderFailure))
	assert.False(t, IsTransient(ErrNotFound))
	assert.False(t, IsTransient(nil))
}

func TestCombinationError(t *testing.T) {
	err := &CombinationError{
		PageNumber:  2,
		Key:         "page2_a-1",
		Combination: Combination{"a": 1},
		Err:         fmt.Errorf("template: %w", ErrFetchFailure),
	}

	assert.Equal(t, "page 2 combination page2_a-1: template: fetch failure", err.Error())
	assert.ErrorIs(t, err, ErrFetchFailure)

	var target *CombinationError
	wrapped := fmt.Errorf("generate: %w", err)
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, 2, target.PageNumber)
}
