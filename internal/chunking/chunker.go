package chunking

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/strategist/internal/rag"
)

// Chunk partitions sentences into consecutive groups of chunkSize sentences
// and joins each group with a single space. The final group holds the
// remainder. Sentences are not trimmed, normalized or deduplicated.
//
// A non-positive chunkSize returns an error wrapping
// rag.ErrInvalidConfiguration and no output.
func Chunk(sentences []string, chunkSize int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", rag.ErrInvalidConfiguration, chunkSize)
	}

	chunks := make([]string, 0, (len(sentences)+chunkSize-1)/chunkSize)
	for start := 0; start < len(sentences); start += chunkSize {
		end := min(start+chunkSize, len(sentences))
		chunks = append(chunks, strings.Join(sentences[start:end], " "))
	}
	return chunks, nil
}
