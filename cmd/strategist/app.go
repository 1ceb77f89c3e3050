package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fyrsmithlabs/strategist/internal/chunking"
	"github.com/fyrsmithlabs/strategist/internal/config"
	"github.com/fyrsmithlabs/strategist/internal/documents"
	"github.com/fyrsmithlabs/strategist/internal/embeddings"
	"github.com/fyrsmithlabs/strategist/internal/generator"
	"github.com/fyrsmithlabs/strategist/internal/knowledge"
	"github.com/fyrsmithlabs/strategist/internal/logging"
	"github.com/fyrsmithlabs/strategist/internal/secrets"
	"github.com/fyrsmithlabs/strategist/internal/strategist"
	"github.com/fyrsmithlabs/strategist/internal/telemetry"
	"github.com/fyrsmithlabs/strategist/internal/vectorstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app holds process-wide services shared by every command.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	telemetry *telemetry.Telemetry
	registry  *prometheus.Registry
}

// bootstrap loads settings and starts logging and telemetry.
func bootstrap(ctx context.Context, configPath string, stderr io.Writer) (*app, error) {
	// Problems are logged once the logger exists.
	hasKey, envErr := config.LoadEnvFile(".env")
	cfg, cfgErr := config.Load(configPath)

	logCfg, logErr := logging.FromSettings(cfg.Logging)
	if logErr != nil {
		logCfg = logging.NewDefaultConfig()
	}
	logger, err := logging.NewLoggerWithWriter(logCfg, stderr, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	if envErr != nil {
		logger.Warn(ctx, "failed to load .env file", zap.Error(envErr))
	}
	if cfgErr != nil {
		logger.Warn(ctx, "failed to load config, using defaults",
			zap.String("path", configPath), zap.Error(cfgErr))
	}
	if logErr != nil {
		logger.Warn(ctx, "invalid logging settings, using defaults", zap.Error(logErr))
	}

	for _, problem := range cfg.RepairInvalid() {
		logger.Warn(ctx, "invalid setting, using default", zap.String("problem", problem))
	}

	if !hasKey && !cfg.Generator.APIKey.IsSet() {
		logger.Warn(ctx, "GROQ_API_KEY is not set, strategy generation will fail")
	}

	rt := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	rt.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version), logger.Underlying())
	if err != nil {
		logger.Warn(ctx, "telemetry unavailable", zap.Error(err))
	} else {
		rt.telemetry = tel
	}

	return rt, nil
}

// Close flushes telemetry and the logger.
func (rt *app) Close() {
	if rt.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.ShutdownTimeout.Duration())
		if err := rt.telemetry.Shutdown(ctx); err != nil {
			rt.logger.Warn(ctx, "telemetry shutdown failed", zap.Error(err))
		}
		cancel()
	}
	_ = rt.logger.Sync()
}

// system is the assembled retrieval and generation pipeline.
type system struct {
	cfg        *config.Config
	logger     *logging.Logger
	embedder   embeddings.Provider
	store      vectorstore.Store
	knowledge  *knowledge.KnowledgeBase
	strategist *strategist.Strategist
}

func buildSystem(ctx context.Context, rt *app) (*system, error) {
	cfg := rt.cfg
	zl := rt.logger.Underlying()

	embedder, err := embeddings.NewProvider(embeddings.ProviderConfig{
		Provider: cfg.VectorDB.EmbeddingProvider,
		Model:    cfg.VectorDB.ModelName,
		BaseURL:  cfg.VectorDB.EmbeddingBaseURL,
		APIKey:   cfg.VectorDB.EmbeddingAPIKey.Value(),
		CacheDir: cfg.VectorDB.ModelCacheDir,
	}, zl.Named("embeddings"))
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	sys := &system{cfg: cfg, logger: rt.logger, embedder: embedder}

	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
		Path:       cfg.VectorDB.DBPath,
		Compress:   cfg.VectorDB.Compress,
		Collection: cfg.VectorDB.CollectionName,
		VectorSize: embedder.Dimension(),
	}, embedder, zl.Named("vectorstore"), vectorstore.WithRegisterer(rt.registry))
	if err != nil {
		sys.Close()
		return nil, fmt.Errorf("opening vector store: %w", err)
	}
	sys.store = store

	splitter, err := chunking.NewEnglishSplitter()
	if err != nil {
		sys.Close()
		return nil, fmt.Errorf("loading sentence splitter: %w", err)
	}

	var kbOpts []knowledge.Option
	if cfg.Scrubbing.Enabled {
		redactor, err := newRedactor(cfg.Scrubbing.AllowlistPath, zl.Named("secrets"))
		if err != nil {
			sys.Close()
			return nil, err
		}
		kbOpts = append(kbOpts, knowledge.WithScrubber(redactor))
	}

	kb, err := knowledge.New(store, splitter, zl.Named("knowledge"), kbOpts...)
	if err != nil {
		sys.Close()
		return nil, err
	}
	sys.knowledge = kb

	gen, err := generator.New(generator.Config{
		Model:        cfg.Generator.ModelName,
		BaseURL:      cfg.Generator.BaseURL,
		APIKey:       cfg.Generator.APIKey.Value(),
		MaxTokens:    cfg.Generator.MaxTokens,
		Temperature:  cfg.Generator.Temperature,
		SystemPrompt: cfg.Prompts.SystemPrompt,
		RateLimit:    cfg.Generator.RateLimit,
	}, generator.WithLogger(zl.Named("generator")))
	if err != nil {
		sys.Close()
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	s, err := strategist.New(kb, gen,
		strategist.WithCacheSize(cfg.Strategist.CacheSize),
		strategist.WithTopK(cfg.Strategist.TopK),
		strategist.WithRetrievalTimeout(cfg.Strategist.RetrievalTimeout.Duration()),
		strategist.WithGenerationTimeout(cfg.Strategist.GenerationTimeout.Duration()),
		strategist.WithLogger(zl.Named("strategist")),
		strategist.WithRegisterer(rt.registry),
	)
	if err != nil {
		sys.Close()
		return nil, fmt.Errorf("creating strategist: %w", err)
	}
	sys.strategist = s

	rt.logger.Debug(ctx, "system ready",
		zap.String("collection", cfg.VectorDB.CollectionName),
		zap.String("model", cfg.Generator.ModelName))
	return sys, nil
}

func newRedactor(allowlistPath string, logger *zap.Logger) (*secrets.Redactor, error) {
	allowlist, err := secrets.LoadAllowlist(allowlistPath)
	if err != nil {
		return nil, fmt.Errorf("loading scrubbing allowlist: %w", err)
	}
	return secrets.NewRedactor(allowlist, logger)
}

// Close releases the vector store and the embedding model.
func (s *system) Close() {
	ctx := context.Background()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing vector store failed", zap.Error(err))
		}
	}
	if s.embedder != nil {
		if err := s.embedder.Close(); err != nil {
			s.logger.Warn(ctx, "closing embedding provider failed", zap.Error(err))
		}
	}
}

// populate ingests resources.pdf_source into an empty knowledge base.
func (s *system) populate(ctx context.Context) {
	n, err := s.knowledge.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "counting knowledge base chunks failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Debug(ctx, "knowledge base already populated", zap.Int("chunks", n))
		return
	}
	s.ingestPDF(ctx, s.cfg.Resources.PDFSource)
}

// ingestPDF extracts and stores a PDF. Failures are logged.
func (s *system) ingestPDF(ctx context.Context, path string) {
	text, err := documents.ExtractText(path)
	if err != nil {
		s.logger.Warn(ctx, "skipping PDF", zap.String("path", path), zap.Error(err))
		return
	}

	added, err := s.knowledge.IngestDocument(ctx, knowledge.Document{
		Source: filepath.Base(path),
		Text:   text,
	}, s.cfg.VectorDB.ChunkSize)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error(ctx, "ingesting PDF failed", zap.String("path", path), zap.Error(err))
		return
	}
	s.logger.Info(ctx, "added PDF to knowledge base", zap.String("path", path), zap.Int("chunks", added))
}
