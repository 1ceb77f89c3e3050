package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/strategist/internal/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSentences(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Sentence %d.", i)
	}
	return out
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		chunkSize int
		wantSizes []int
	}{
		{name: "empty input", n: 0, chunkSize: 3, wantSizes: []int{}},
		{name: "exact multiple", n: 6, chunkSize: 3, wantSizes: []int{3, 3}},
		{name: "remainder in last chunk", n: 7, chunkSize: 3, wantSizes: []int{3, 3, 1}},
		{name: "chunk larger than input", n: 2, chunkSize: 10, wantSizes: []int{2}},
		{name: "one sentence per chunk", n: 4, chunkSize: 1, wantSizes: []int{1, 1, 1, 1}},
		{name: "default chunk size", n: 25, chunkSize: 10, wantSizes: []int{10, 10, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := makeSentences(tt.n)

			chunks, err := Chunk(input, tt.chunkSize)
			require.NoError(t, err)
			require.Len(t, chunks, len(tt.wantSizes))

			// ceil(N/C) chunks
			assert.Equal(t, (tt.n+tt.chunkSize-1)/tt.chunkSize, len(chunks))

			var rebuilt []string
			for i, chunk := range chunks {
				parts := strings.SplitAfter(chunk, ". ")
				for j := range parts {
					parts[j] = strings.TrimSuffix(parts[j], " ")
				}
				assert.Len(t, parts, tt.wantSizes[i], "chunk %d", i)
				rebuilt = append(rebuilt, parts...)
			}
			if tt.n > 0 {
				assert.Equal(t, input, rebuilt)
			}
		})
	}
}

func TestChunk_JoinsWithSingleSpace(t *testing.T) {
	chunks, err := Chunk([]string{" a ", "b", "c"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{" a  b", "c"}, chunks)
}

func TestChunk_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1, -100} {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			chunks, err := Chunk(makeSentences(5), size)
			require.Error(t, err)
			assert.ErrorIs(t, err, rag.ErrInvalidConfiguration)
			assert.Nil(t, chunks)
		})
	}
}
