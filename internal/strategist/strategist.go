package strategist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fyrsmithlabs/strategist/internal/rag"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("strategist.strategist")

const (
	// DefaultCacheSize is the number of strategies kept in memory.
	DefaultCacheSize = 32

	// DefaultTopK is the number of passages retrieved per description.
	DefaultTopK = 3
)

// Retriever finds the passages most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}

// Generator writes a strategy from a description and passages.
type Generator interface {
	Generate(ctx context.Context, description string, passages []string) (string, error)
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Entries  int    `json:"entries"`
	Capacity int    `json:"capacity"`
}

// Option configures a Strategist.
type Option func(*Strategist)

// WithCacheSize sets the LRU capacity. Non-positive sizes are rejected by New.
func WithCacheSize(size int) Option {
	return func(s *Strategist) {
		s.cacheSize = size
	}
}

// WithTopK sets how many passages are retrieved per description.
func WithTopK(k int) Option {
	return func(s *Strategist) {
		s.topK = k
	}
}

// WithRetrievalTimeout bounds each retrieval. Zero disables the bound.
func WithRetrievalTimeout(d time.Duration) Option {
	return func(s *Strategist) {
		s.retrievalTimeout = d
	}
}

// WithGenerationTimeout bounds each generation. Zero disables the bound.
func WithGenerationTimeout(d time.Duration) Option {
	return func(s *Strategist) {
		s.generationTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Strategist) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegisterer registers the cache metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Strategist) {
		s.registerer = reg
	}
}

// Strategist orchestrates retrieval and generation behind a strategy cache.
// It is safe for concurrent use.
type Strategist struct {
	retriever Retriever
	generator Generator

	cacheSize         int
	topK              int
	retrievalTimeout  time.Duration
	generationTimeout time.Duration

	cache   *lru.Cache[string, string]
	group   singleflight.Group
	clearMu sync.Mutex
	epoch   atomic.Uint64
	hits    atomic.Uint64
	misses  atomic.Uint64
	metrics *metrics

	registerer prometheus.Registerer
	logger     *zap.Logger
}

// New creates a Strategist.
func New(retriever Retriever, generator Generator, opts ...Option) (*Strategist, error) {
	if retriever == nil {
		return nil, fmt.Errorf("%w: retriever cannot be nil", rag.ErrInvalidConfiguration)
	}
	if generator == nil {
		return nil, fmt.Errorf("%w: generator cannot be nil", rag.ErrInvalidConfiguration)
	}

	s := &Strategist{
		retriever: retriever,
		generator: generator,
		cacheSize: DefaultCacheSize,
		topK:      DefaultTopK,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cacheSize <= 0 {
		return nil, fmt.Errorf("%w: cache size must be positive, got %d", rag.ErrInvalidConfiguration, s.cacheSize)
	}
	if s.topK <= 0 {
		return nil, fmt.Errorf("%w: top k must be positive, got %d", rag.ErrInvalidConfiguration, s.topK)
	}
	if s.retrievalTimeout < 0 || s.generationTimeout < 0 {
		return nil, fmt.Errorf("%w: timeouts cannot be negative", rag.ErrInvalidConfiguration)
	}

	s.metrics = newMetrics(s.registerer)

	cache, err := lru.NewWithEvict[string, string](s.cacheSize, func(key, _ string) {
		s.logger.Debug("strategy evicted from cache", zap.String("description", key))
	})
	if err != nil {
		return nil, fmt.Errorf("creating strategy cache: %w", err)
	}
	s.cache = cache

	return s, nil
}

// CreateStrategy returns the strategy for description, generating it on a
// cache miss. Identical descriptions are served from the cache; concurrent
// misses for one description share a single retrieval and generation.
func (s *Strategist) CreateStrategy(ctx context.Context, description string) (string, error) {
	ctx, span := tracer.Start(ctx, "Strategist.CreateStrategy")
	defer span.End()

	if strategy, ok := s.cache.Get(description); ok {
		s.hits.Add(1)
		s.metrics.hits.Inc()
		span.SetAttributes(attribute.Bool("cache_hit", true))
		s.logger.Debug("strategy served from cache")
		return strategy, nil
	}

	s.misses.Add(1)
	s.metrics.misses.Inc()
	span.SetAttributes(attribute.Bool("cache_hit", false))

	// The shared computation outlives any single caller; each caller only
	// stops waiting when its own context ends.
	flight := s.group.DoChan(description, func() (interface{}, error) {
		if strategy, ok := s.cache.Peek(description); ok {
			return strategy, nil
		}

		epoch := s.epoch.Load()
		strategy, err := s.compute(context.WithoutCancel(ctx), description)
		if err != nil {
			s.metrics.failures.WithLabelValues(failureStage(err)).Inc()
			return "", err
		}
		s.store(epoch, description, strategy)
		return strategy, nil
	})

	select {
	case <-ctx.Done():
		err := fmt.Errorf("waiting for strategy: %w", ctx.Err())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	case res := <-flight:
		span.SetAttributes(attribute.Bool("shared", res.Shared))
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
			return "", res.Err
		}
		span.SetStatus(codes.Ok, "success")
		return res.Val.(string), nil
	}
}

// store caches strategy unless the cache was cleared after the computation
// began.
func (s *Strategist) store(epoch uint64, description, strategy string) {
	s.clearMu.Lock()
	defer s.clearMu.Unlock()

	if s.epoch.Load() != epoch {
		s.logger.Debug("cache cleared during computation, result not cached")
		return
	}
	s.cache.Add(description, strategy)
	s.metrics.entries.Set(float64(s.cache.Len()))
}

func failureStage(err error) string {
	if errors.Is(err, rag.ErrRetrievalFailure) {
		return stageRetrieval
	}
	return stageGeneration
}

func (s *Strategist) compute(ctx context.Context, description string) (string, error) {
	start := time.Now()

	passages, err := s.retrieve(ctx, description)
	if err != nil {
		s.logger.Error("retrieval failed", zap.Error(err))
		return "", err
	}

	strategy, err := s.generate(ctx, description, passages)
	if err != nil {
		s.logger.Error("generation failed", zap.Error(err))
		return "", err
	}

	s.logger.Info("strategy created",
		zap.Int("passages", len(passages)),
		zap.Duration("elapsed", time.Since(start)))

	return strategy, nil
}

func (s *Strategist) retrieve(ctx context.Context, description string) ([]string, error) {
	if s.retrievalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.retrievalTimeout)
		defer cancel()
	}

	passages, err := s.retriever.Retrieve(ctx, description, s.topK)
	if err != nil {
		if errors.Is(err, rag.ErrRetrievalFailure) {
			return nil, err
		}
		return nil, &rag.RetrievalError{Query: description, Err: err}
	}
	return passages, nil
}

func (s *Strategist) generate(ctx context.Context, description string, passages []string) (string, error) {
	if s.generationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.generationTimeout)
		defer cancel()
	}

	strategy, err := s.generator.Generate(ctx, description, passages)
	if err != nil {
		if errors.Is(err, rag.ErrGenerationFailure) {
			return "", err
		}
		return "", &rag.GenerationError{Err: err}
	}
	return strategy, nil
}

// ClearCache discards every cached strategy. Computations in flight when it
// runs still answer their callers but are not cached.
func (s *Strategist) ClearCache() {
	s.clearMu.Lock()
	defer s.clearMu.Unlock()

	s.epoch.Add(1)
	n := s.cache.Len()
	s.cache.Purge()
	s.metrics.entries.Set(0)
	s.logger.Info("strategy cache cleared", zap.Int("entries", n))
}

// CacheLen returns the number of cached strategies.
func (s *Strategist) CacheLen() int {
	return s.cache.Len()
}

// Stats returns hit and miss counts since construction.
func (s *Strategist) Stats() Stats {
	return Stats{
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
		Entries:  s.cache.Len(),
		Capacity: s.cacheSize,
	}
}
