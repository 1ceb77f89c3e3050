package chunking

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// SentenceSplitter splits raw text into ordered sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

// EnglishSplitter detects sentence boundaries with a punkt model trained on
// English text. Abbreviations (Dr., e.g.), decimal numbers ($1.50) and
// quotations do not end a sentence.
//
// EnglishSplitter is safe for concurrent use; the tokenizer holds no
// per-call state.
type EnglishSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewEnglishSplitter loads the bundled English punkt model.
func NewEnglishSplitter() (*EnglishSplitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("loading english sentence model: %w", err)
	}
	return &EnglishSplitter{tokenizer: tokenizer}, nil
}

// Split returns the sentences of text in order. Surrounding whitespace is
// trimmed and empty sentences are dropped.
func (s *EnglishSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tokens := s.tokenizer.Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		sentence := strings.TrimSpace(tok.Text)
		if sentence == "" {
			continue
		}
		out = append(out, sentence)
	}
	return out
}

var _ SentenceSplitter = (*EnglishSplitter)(nil)
