package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnglishSplitter_Split(t *testing.T) {
	splitter, err := NewEnglishSplitter()
	require.NoError(t, err)

	t.Run("splits plain sentences", func(t *testing.T) {
		got := splitter.Split("Eco bottles reduce plastic waste. Millennials care about sustainability. Budgets matter!")
		assert.Equal(t, []string{
			"Eco bottles reduce plastic waste.",
			"Millennials care about sustainability.",
			"Budgets matter!",
		}, got)
	})

	t.Run("does not split decimal numbers", func(t *testing.T) {
		got := splitter.Split("The bottle costs $12.50 at launch. Sales grew 3.5 percent.")
		assert.Len(t, got, 2)
		assert.Contains(t, got[0], "$12.50")
	})

	t.Run("empty text yields no sentences", func(t *testing.T) {
		assert.Empty(t, splitter.Split(""))
		assert.Empty(t, splitter.Split("   \n\t "))
	})

	t.Run("sentences are trimmed", func(t *testing.T) {
		for _, s := range splitter.Split("  First one.   Second one.  ") {
			assert.Equal(t, strings.TrimSpace(s), s)
		}
	})
}


func TestEnglishSplitter_AbbreviationsAndQuotes(t *testing.T) {
	splitter, err := NewEnglishSplitter()
	require.NoError(t, err)

	tests := []struct {
		name      string
		text      string
		wantFirst string
		wantLast  string
	}{
		{
			name:      "title abbreviation",
			text:      "Dr. Smith launched the campaign. It worked.",
			wantFirst: "Dr. Smith launched the campaign.",
			wantLast:  "It worked.",
		},
		{
			name:      "quoted sentence",
			text:      `He said "Buy now." Then he left.`,
			wantFirst: `He said "Buy now."`,
			wantLast:  "Then he left.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitter.Split(tt.text)
			require.Len(t, got, 2)
			assert.Equal(t, tt.wantFirst, got[0])
			assert.Equal(t, tt.wantLast, got[1])
		})
	}
}
