// Package chunking turns extracted document text into retrievable units.
//
// Text is first split into sentences by a language-aware boundary detector,
// then consecutive sentences are grouped into fixed-size chunks. A chunk never
// splits a sentence and keeps the source order:
//
//	splitter, err := chunking.NewEnglishSplitter()
//	if err != nil {
//	    return err
//	}
//	chunks, err := chunking.Chunk(splitter.Split(text), 10)
package chunking
