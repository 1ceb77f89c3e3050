package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/strategist/internal/chunking"
	"github.com/fyrsmithlabs/strategist/internal/rag"
	"github.com/fyrsmithlabs/strategist/internal/vectorstore"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("strategist.knowledge")

// Metadata keys stored with every chunk.
const (
	MetadataSource     = "source"
	MetadataChunkIndex = "chunk_index"
)

// Document is a piece of source text with an identifier such as a file name.
type Document struct {
	Source string
	Text   string
}

// Scrubber masks sensitive values in document text.
type Scrubber interface {
	Scrub(text string) (scrubbed string, findings int)
}

// Option configures a KnowledgeBase.
type Option func(*KnowledgeBase)

// WithScrubber masks document text with s before it is chunked.
func WithScrubber(s Scrubber) Option {
	return func(kb *KnowledgeBase) { kb.scrubber = s }
}

// KnowledgeBase ingests text into a vector store and retrieves passages.
type KnowledgeBase struct {
	store    vectorstore.Store
	splitter chunking.SentenceSplitter
	scrubber Scrubber
	logger   *zap.Logger
}

// New creates a KnowledgeBase over store.
func New(store vectorstore.Store, splitter chunking.SentenceSplitter, logger *zap.Logger, opts ...Option) (*KnowledgeBase, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: vector store cannot be nil", rag.ErrInvalidConfiguration)
	}
	if splitter == nil {
		return nil, fmt.Errorf("%w: sentence splitter cannot be nil", rag.ErrInvalidConfiguration)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	kb := &KnowledgeBase{
		store:    store,
		splitter: splitter,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(kb)
	}
	return kb, nil
}

// Ingest splits text into sentence chunks and stores them. It returns the
// number of chunks added.
func (kb *KnowledgeBase) Ingest(ctx context.Context, text string, chunkSize int) (int, error) {
	return kb.IngestDocument(ctx, Document{Text: text}, chunkSize)
}

// IngestDocument is Ingest with the document source recorded in chunk
// metadata.
func (kb *KnowledgeBase) IngestDocument(ctx context.Context, doc Document, chunkSize int) (int, error) {
	ctx, span := tracer.Start(ctx, "KnowledgeBase.Ingest")
	defer span.End()

	span.SetAttributes(
		attribute.String("source", doc.Source),
		attribute.Int("chunk_size", chunkSize),
	)

	if chunkSize <= 0 {
		err := fmt.Errorf("%w: chunk size must be positive, got %d", rag.ErrInvalidConfiguration, chunkSize)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	fail := func(err error) (int, error) {
		ingestErr := &rag.IngestError{Source: doc.Source, Err: err}
		span.RecordError(ingestErr)
		span.SetStatus(codes.Error, ingestErr.Error())
		kb.logger.Error("ingest failed",
			zap.String("source", doc.Source),
			zap.Error(err))
		return 0, ingestErr
	}

	if strings.TrimSpace(doc.Text) == "" {
		return fail(fmt.Errorf("text is empty"))
	}

	text := doc.Text
	if kb.scrubber != nil {
		var redacted int
		text, redacted = kb.scrubber.Scrub(text)
		span.SetAttributes(attribute.Int("redactions", redacted))
	}

	sentences := kb.splitter.Split(text)
	if len(sentences) == 0 {
		return fail(fmt.Errorf("no sentences found"))
	}

	chunks, err := chunking.Chunk(sentences, chunkSize)
	if err != nil {
		return 0, err
	}

	docs := make([]vectorstore.Document, len(chunks))
	for i, chunk := range chunks {
		metadata := map[string]interface{}{MetadataChunkIndex: i}
		if doc.Source != "" {
			metadata[MetadataSource] = doc.Source
		}
		docs[i] = vectorstore.Document{
			ID:       uuid.NewString(),
			Content:  chunk,
			Metadata: metadata,
		}
	}

	ids, err := kb.store.AddDocuments(ctx, docs)
	if err != nil {
		return fail(err)
	}

	span.SetAttributes(
		attribute.Int("sentences", len(sentences)),
		attribute.Int("chunks", len(ids)),
	)
	span.SetStatus(codes.Ok, "success")

	kb.logger.Info("ingested document",
		zap.String("source", doc.Source),
		zap.Int("sentences", len(sentences)),
		zap.Int("chunks", len(ids)))

	return len(ids), nil
}

// Retrieve returns up to k chunk texts ordered by similarity to query, most
// relevant first. An empty knowledge base yields an empty slice.
func (kb *KnowledgeBase) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "KnowledgeBase.Retrieve")
	defer span.End()

	span.SetAttributes(attribute.Int("k", k))

	if k <= 0 {
		err := fmt.Errorf("%w: k must be positive, got %d", rag.ErrInvalidConfiguration, k)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	results, err := kb.store.Search(ctx, query, k)
	if err != nil {
		retrievalErr := &rag.RetrievalError{Query: query, Err: err}
		span.RecordError(retrievalErr)
		span.SetStatus(codes.Error, retrievalErr.Error())
		kb.logger.Error("retrieval failed", zap.Int("k", k), zap.Error(err))
		return nil, retrievalErr
	}

	passages := make([]string, 0, len(results))
	for _, r := range results {
		passages = append(passages, r.Content)
	}

	span.SetAttributes(attribute.Int("results", len(passages)))
	span.SetStatus(codes.Ok, "success")

	kb.logger.Debug("retrieved passages",
		zap.Int("k", k),
		zap.Int("results", len(passages)))

	return passages, nil
}

// Count returns the number of stored chunks.
func (kb *KnowledgeBase) Count(ctx context.Context) (int, error) {
	return kb.store.Count(ctx)
}
