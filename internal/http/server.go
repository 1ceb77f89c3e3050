package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/strategist/internal/knowledge"
	"github.com/fyrsmithlabs/strategist/internal/logging"
	"github.com/fyrsmithlabs/strategist/internal/strategist"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer(instrumentationName)

// StrategyService produces and caches strategies.
type StrategyService interface {
	CreateStrategy(ctx context.Context, description string) (string, error)
	ClearCache()
	Stats() strategist.Stats
}

// KnowledgeService stores uploaded documents.
type KnowledgeService interface {
	IngestDocument(ctx context.Context, doc knowledge.Document, chunkSize int) (int, error)
	Count(ctx context.Context) (int, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
	// ChunkSize is the number of sentences per chunk for uploaded PDFs.
	ChunkSize int
	// OutputDir receives generated strategy PDFs.
	OutputDir string
	// UploadMaxMB caps request bodies.
	UploadMaxMB int
	Version     string
}

// Server provides the web UI and API endpoints.
type Server struct {
	echo       *echo.Echo
	strategies StrategyService
	knowledge  KnowledgeService
	logger     *logging.Logger
	config     *Config
	gatherer   prometheus.Gatherer
}

// Option customizes a Server.
type Option func(*Server)

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewServer creates a new HTTP server.
func NewServer(strategies StrategyService, kb KnowledgeService, logger *logging.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if strategies == nil {
		return nil, fmt.Errorf("strategy service cannot be nil")
	}
	if kb == nil {
		return nil, fmt.Errorf("knowledge service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 8501
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 10
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "strategies"
	}
	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 32
	}

	renderer, err := newTemplateRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	s := &Server{
		echo:       e,
		strategies: strategies,
		knowledge:  kb,
		logger:     logger.Named("http"),
		config:     cfg,
		gatherer:   prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestContext)
	e.Use(NewHTTPMetrics(logger.Underlying()).Middleware())
	e.Use(s.requestLogger)

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	bodyLimit := middleware.BodyLimit(fmt.Sprintf("%dM", s.config.UploadMaxMB))
	s.echo.POST("/documents", s.handleUpload, bodyLimit)
	s.echo.POST("/strategies", s.handleCreateStrategy)
	s.echo.GET("/strategies/:file", s.handleDownload)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/status", s.handleStatus)
	v1.DELETE("/cache", s.handleClearCache)
}

// requestContext starts a server span, continuing any incoming trace, and
// stores the request ID for log correlation.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		ctx = logging.WithRequestID(ctx, c.Response().Header().Get(echo.HeaderXRequestID))

		ctx, span := tracer.Start(ctx, req.Method+" "+normalizePath(c.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.method", req.Method)),
		)
		defer span.End()

		c.SetRequest(req.WithContext(ctx))
		err := next(c)

		status := c.Response().Status
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		return err
	}
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		s.logger.Info(c.Request().Context(), "http request",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}
}

// Echo exposes the underlying router.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// ServeHTTP lets the server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", s.Addr()))
	return s.echo.Start(s.Addr())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
