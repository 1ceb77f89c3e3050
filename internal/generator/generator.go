package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/strategist/internal/rag"
	"github.com/tmc/langchaingo/llms"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("strategist.generator")

// FailurePrefix starts every rendered generation failure.
const FailurePrefix = "Failed to generate strategy: "

// Config holds the language model settings.
type Config struct {
	// Model is the chat model identifier, e.g. mixtral-8x7b-32768.
	Model string
	// BaseURL is the OpenAI-compatible API root. Empty selects Groq.
	BaseURL string
	// APIKey authenticates against BaseURL.
	APIKey string
	// MaxTokens bounds the response length.
	MaxTokens int
	// Temperature controls sampling randomness.
	Temperature float64
	// SystemPrompt is sent as the system message; empty omits it.
	SystemPrompt string
	// RateLimit caps calls per second. Zero means unlimited.
	RateLimit float64
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model is required", rag.ErrInvalidConfiguration)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive, got %d", rag.ErrInvalidConfiguration, c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be within [0, 2], got %g", rag.ErrInvalidConfiguration, c.Temperature)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate limit cannot be negative", rag.ErrInvalidConfiguration)
	}
	return nil
}

// Option configures a Generator.
type Option func(*Generator)

// WithLLM uses model instead of building an OpenAI-compatible client.
func WithLLM(model llms.Model) Option {
	return func(g *Generator) {
		g.llm = model
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator produces strategy text from a chat model.
type Generator struct {
	llm     llms.Model
	cfg     Config
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *metrics
}

// New creates a Generator.
func New(cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.llm == nil {
		if cfg.APIKey == "" {
			g.logger.Warn("no API key configured, strategy generation will fail")
		}
		llm, err := NewOpenAICompatibleModel(cfg.BaseURL, cfg.Model, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		g.llm = llm
	}

	if cfg.RateLimit > 0 {
		burst := max(1, int(cfg.RateLimit))
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	g.metrics = defaultMetrics(g.logger)

	return g, nil
}

// Generate writes a strategy for description grounded on passages. Any
// failure is returned as *rag.GenerationError.
func (g *Generator) Generate(ctx context.Context, description string, passages []string) (string, error) {
	ctx, span := tracer.Start(ctx, "Generator.Generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("passages", len(passages)),
	)

	start := time.Now()
	strategy, err := g.generate(ctx, description, passages)
	g.metrics.record(ctx, g.cfg.Model, start, err)
	if err != nil {
		genErr := &rag.GenerationError{Model: g.cfg.Model, Err: err}
		span.RecordError(genErr)
		span.SetStatus(codes.Error, genErr.Error())
		g.logger.Error("strategy generation failed",
			zap.String("model", g.cfg.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", genErr
	}

	span.SetAttributes(attribute.Int("strategy_length", len(strategy)))
	span.SetStatus(codes.Ok, "success")

	g.logger.Info("strategy generated",
		zap.String("model", g.cfg.Model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("length", len(strategy)))

	return strategy, nil
}

func (g *Generator) generate(ctx context.Context, description string, passages []string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	messages := make([]llms.MessageContent, 0, 2)
	if g.cfg.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, g.cfg.SystemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, BuildPrompt(description, passages)))

	resp, err := g.llm.GenerateContent(ctx, messages,
		llms.WithModel(g.cfg.Model),
		llms.WithMaxTokens(g.cfg.MaxTokens),
		llms.WithTemperature(g.cfg.Temperature),
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}

// FailureText renders err as the message shown to users in place of a
// strategy.
func FailureText(err error) string {
	if err == nil {
		return ""
	}
	var genErr *rag.GenerationError
	if errors.As(err, &genErr) {
		return FailurePrefix + genErr.Cause()
	}
	return FailurePrefix + err.Error()
}
