// Package knowledge maintains the marketing knowledge base that strategies
// are grounded on.
//
// Text is split into English sentences, grouped into chunks of a configured
// number of sentences and written to a persistent vector store under fresh
// UUIDs. Retrieval returns the chunk texts most similar to a query.
//
// The knowledge base is append-only: ingesting the same document twice
// stores its chunks twice.
package knowledge
