package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/strategist/internal/vectorstore"
	"go.uber.org/zap"
)

var (
	// ErrEmptyInput indicates empty or nil input texts
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates embedding generation failure
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// DefaultModel is the sentence-transformer used when none is configured.
const DefaultModel = "all-MiniLM-L6-v2"

// Provider is the interface for embedding providers.
type Provider interface {
	vectorstore.Embedder
	// Dimension returns the embedding dimension for the current model.
	Dimension() int
	// Close releases resources held by the provider.
	Close() error
}

// ProviderConfig holds configuration for creating an embedding provider.
type ProviderConfig struct {
	// Provider is the provider type: "fastembed" or "openai"
	Provider string
	// Model is the embedding model name
	Model string
	// BaseURL is the endpoint (only used for the openai provider)
	BaseURL string
	// APIKey authenticates against the endpoint (openai provider, optional)
	APIKey string
	// CacheDir is the model cache directory (only used for FastEmbed)
	CacheDir string
}

// knownDimensions maps canonical model names to their embedding dimensions.
var knownDimensions = map[string]int{
	"BAAI/bge-small-en-v1.5":                 384,
	"BAAI/bge-small-en":                      384,
	"BAAI/bge-base-en-v1.5":                  768,
	"BAAI/bge-base-en":                       768,
	"BAAI/bge-small-zh-v1.5":                 512,
	"sentence-transformers/all-MiniLM-L6-v2": 384,
	"text-embedding-3-small":                 1536,
	"text-embedding-3-large":                 3072,
	"text-embedding-ada-002":                 1536,
}

// CanonicalModelName expands short sentence-transformers names such as
// "all-MiniLM-L6-v2" to their fully qualified form.
func CanonicalModelName(model string) string {
	if model == "" {
		model = DefaultModel
	}
	if strings.Contains(model, "/") {
		return model
	}
	if _, ok := knownDimensions["sentence-transformers/"+model]; ok {
		return "sentence-transformers/" + model
	}
	return model
}

// DetectDimension returns the embedding dimension for a model name.
// Falls back to 384 if model is unknown.
func DetectDimension(model string) int {
	if dim, ok := knownDimensions[CanonicalModelName(model)]; ok {
		return dim
	}
	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "large"):
		return 1024
	case strings.Contains(lower, "base"):
		return 768
	default:
		return 384
	}
}

// NewProvider creates an embedding provider based on the configuration.
func NewProvider(cfg ProviderConfig, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		provider Provider
		err      error
	)
	switch cfg.Provider {
	case "fastembed", "":
		provider, err = NewFastEmbedProvider(FastEmbedConfig{
			Model:    CanonicalModelName(cfg.Model),
			CacheDir: cfg.CacheDir,
		})
	case "openai":
		provider, err = NewOpenAIProvider(OpenAIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("embedding provider ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("dimension", provider.Dimension()),
	)

	return Instrument(provider, cfg.Model, NewMetrics(logger)), nil
}

// instrumentedProvider records metrics around every embedding call.
type instrumentedProvider struct {
	Provider
	model   string
	metrics *Metrics
}

// Instrument wraps p so each call is recorded in m.
func Instrument(p Provider, model string, m *Metrics) Provider {
	return &instrumentedProvider{Provider: p, model: model, metrics: m}
}

func (p *instrumentedProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors, err := p.Provider.EmbedDocuments(ctx, texts)
	p.metrics.RecordGeneration(ctx, p.model, "embed_documents", time.Since(start), len(texts), err)
	return vectors, err
}

func (p *instrumentedProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vector, err := p.Provider.EmbedQuery(ctx, text)
	p.metrics.RecordGeneration(ctx, p.model, "embed_query", time.Since(start), 1, err)
	return vector, err
}
