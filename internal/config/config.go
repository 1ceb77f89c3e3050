// Package config loads strategist settings.
//
// Settings come from three layers, lowest precedence first: built-in
// defaults, a YAML file (settings.yaml by default) and environment
// variables prefixed with STRATEGIST_. The Groq API key is also read from
// GROQ_API_KEY, optionally populated from a .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/strategist/internal/generator"
	"github.com/fyrsmithlabs/strategist/internal/rag"
)

// Config holds the complete strategist configuration.
type Config struct {
	VectorDB   VectorDBConfig   `koanf:"vector_db" json:"vector_db"`
	Generator  GeneratorConfig  `koanf:"generator" json:"generator"`
	Output     OutputConfig     `koanf:"output" json:"output"`
	Resources  ResourcesConfig  `koanf:"resources" json:"resources"`
	Prompts    PromptsConfig    `koanf:"prompts" json:"prompts"`
	Strategist StrategistConfig `koanf:"strategist" json:"strategist"`
	Server     ServerConfig     `koanf:"server" json:"server"`
	Logging    LoggingConfig    `koanf:"logging" json:"logging"`
	Telemetry  TelemetryConfig  `koanf:"telemetry" json:"telemetry"`
	Scrubbing  ScrubbingConfig  `koanf:"scrubbing" json:"scrubbing"`
}

// VectorDBConfig configures the knowledge base index and its embedder.
type VectorDBConfig struct {
	CollectionName    string `koanf:"collection_name" json:"collection_name"`
	ModelName         string `koanf:"model_name" json:"model_name"`
	DBPath            string `koanf:"db_path" json:"db_path"`
	ChunkSize         int    `koanf:"chunk_size" json:"chunk_size"`
	EmbeddingProvider string `koanf:"embedding_provider" json:"embedding_provider"` // fastembed or openai
	EmbeddingBaseURL  string `koanf:"embedding_base_url" json:"embedding_base_url"`
	ModelCacheDir     string `koanf:"model_cache_dir" json:"model_cache_dir"`
	EmbeddingAPIKey   Secret `koanf:"embedding_api_key" json:"embedding_api_key"` // openai provider only
	Compress          bool   `koanf:"compress" json:"compress"`
}

// GeneratorConfig configures the language model.
type GeneratorConfig struct {
	ModelName   string  `koanf:"model_name" json:"model_name"`
	MaxTokens   int     `koanf:"max_tokens" json:"max_tokens"`
	Temperature float64 `koanf:"temperature" json:"temperature"`
	BaseURL     string  `koanf:"base_url" json:"base_url"`
	APIKey      Secret  `koanf:"api_key" json:"api_key"`
	RateLimit   float64 `koanf:"rate_limit" json:"rate_limit"` // calls per second, 0 = unlimited
}

// OutputConfig controls where strategy PDFs are written.
type OutputConfig struct {
	PDFOutputDir string `koanf:"pdf_output_dir" json:"pdf_output_dir"`
}

// ResourcesConfig points at the initial knowledge-base document.
type ResourcesConfig struct {
	PDFSource string `koanf:"pdf_source" json:"pdf_source"`
}

// PromptsConfig holds prompt text.
type PromptsConfig struct {
	SystemPrompt string `koanf:"system_prompt" json:"system_prompt"`
}

// StrategistConfig configures caching and per-call timeouts.
type StrategistConfig struct {
	CacheSize         int      `koanf:"cache_size" json:"cache_size"`
	TopK              int      `koanf:"top_k" json:"top_k"`
	RetrievalTimeout  Duration `koanf:"retrieval_timeout" json:"retrieval_timeout"`
	GenerationTimeout Duration `koanf:"generation_timeout" json:"generation_timeout"`
}

// ServerConfig configures the web front end.
type ServerConfig struct {
	Host            string   `koanf:"host" json:"host"`
	Port            int      `koanf:"port" json:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
	UploadMaxMB     int      `koanf:"upload_max_mb" json:"upload_max_mb"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level  string `koanf:"level" json:"level"`
	Format string `koanf:"format" json:"format"` // json or console
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled" json:"enabled"`
	Endpoint    string  `koanf:"endpoint" json:"endpoint"`
	Protocol    string  `koanf:"protocol" json:"protocol"` // grpc or http/protobuf
	ServiceName string  `koanf:"service_name" json:"service_name"`
	Insecure    bool    `koanf:"insecure" json:"insecure"`
	SampleRate  float64 `koanf:"sample_rate" json:"sample_rate"`
}

// ScrubbingConfig controls secret redaction of documents before indexing.
type ScrubbingConfig struct {
	Enabled bool `koanf:"enabled" json:"enabled"`
	// AllowlistPath is a TOML file of regexes that are never redacted.
	AllowlistPath string `koanf:"allowlist_path" json:"allowlist_path"`
}

// Default returns a new Config holding the built-in defaults.
func Default() *Config {
	return &Config{
		VectorDB: VectorDBConfig{
			CollectionName:    "marketing_strategist_collection",
			ModelName:         "all-MiniLM-L6-v2",
			DBPath:            "./chroma_db",
			ChunkSize:         10,
			EmbeddingProvider: "fastembed",
			ModelCacheDir:     "./local_cache",
		},
		Generator: GeneratorConfig{
			ModelName:   "mixtral-8x7b-32768",
			MaxTokens:   1000,
			Temperature: 0.7,
			BaseURL:     "https://api.groq.com/openai/v1",
		},
		Output: OutputConfig{
			PDFOutputDir: "strategies",
		},
		Resources: ResourcesConfig{
			PDFSource: "./Marketing_Strategies.pdf",
		},
		Prompts: PromptsConfig{
			SystemPrompt: generator.DefaultSystemPrompt,
		},
		Strategist: StrategistConfig{
			CacheSize: 32,
			TopK:      3,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8501,
			ShutdownTimeout: Duration(10 * time.Second),
			UploadMaxMB:     32,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			ServiceName: "strategist",
			Insecure:    true,
			SampleRate:  1.0,
		},
		Scrubbing: ScrubbingConfig{
			Enabled: true,
		},
	}
}

// check is one validation rule together with the repair that restores the
// offending setting from the defaults.
type check struct {
	problem func(c *Config) string
	reset   func(c, d *Config)
}

var checks = []check{
	{
		problem: func(c *Config) string {
			if c.VectorDB.CollectionName == "" {
				return "vector_db.collection_name cannot be empty"
			}
			return ""
		},
		reset: func(c, d *Config) { c.VectorDB.CollectionName = d.VectorDB.CollectionName },
	},
	{
		problem: func(c *Config) string {
			if c.VectorDB.ChunkSize <= 0 {
				return fmt.Sprintf("vector_db.chunk_size must be positive, got %d", c.VectorDB.ChunkSize)
			}
			return ""
		},
		reset: func(c, d *Config) { c.VectorDB.ChunkSize = d.VectorDB.ChunkSize },
	},
	{
		problem: func(c *Config) string {
			switch c.VectorDB.EmbeddingProvider {
			case "fastembed":
				return ""
			case "openai":
				if c.VectorDB.EmbeddingBaseURL == "" {
					return "vector_db.embedding_base_url is required for the openai provider"
				}
				return ""
			default:
				return fmt.Sprintf("vector_db.embedding_provider must be fastembed or openai, got %q", c.VectorDB.EmbeddingProvider)
			}
		},
		reset: func(c, d *Config) { c.VectorDB.EmbeddingProvider = d.VectorDB.EmbeddingProvider },
	},
	{
		problem: func(c *Config) string {
			if c.Generator.ModelName == "" {
				return "generator.model_name cannot be empty"
			}
			return ""
		},
		reset: func(c, d *Config) { c.Generator.ModelName = d.Generator.ModelName },
	},
	{
		problem: func(c *Config) string {
			if c.Generator.MaxTokens <= 0 {
				return fmt.Sprintf("generator.max_tokens must be positive, got %d", c.Generator.MaxTokens)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Generator.MaxTokens = d.Generator.MaxTokens },
	},
	{
		problem: func(c *Config) string {
			if c.Generator.Temperature < 0 || c.Generator.Temperature > 2 {
				return fmt.Sprintf("generator.temperature must be within [0, 2], got %g", c.Generator.Temperature)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Generator.Temperature = d.Generator.Temperature },
	},
	{
		problem: func(c *Config) string {
			if c.Generator.RateLimit < 0 {
				return "generator.rate_limit cannot be negative"
			}
			return ""
		},
		reset: func(c, d *Config) { c.Generator.RateLimit = d.Generator.RateLimit },
	},
	{
		problem: func(c *Config) string {
			if c.Strategist.CacheSize <= 0 {
				return fmt.Sprintf("strategist.cache_size must be positive, got %d", c.Strategist.CacheSize)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Strategist.CacheSize = d.Strategist.CacheSize },
	},
	{
		problem: func(c *Config) string {
			if c.Strategist.TopK <= 0 {
				return fmt.Sprintf("strategist.top_k must be positive, got %d", c.Strategist.TopK)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Strategist.TopK = d.Strategist.TopK },
	},
	{
		problem: func(c *Config) string {
			if c.Strategist.RetrievalTimeout < 0 || c.Strategist.GenerationTimeout < 0 {
				return "strategist timeouts cannot be negative"
			}
			return ""
		},
		reset: func(c, d *Config) {
			c.Strategist.RetrievalTimeout = d.Strategist.RetrievalTimeout
			c.Strategist.GenerationTimeout = d.Strategist.GenerationTimeout
		},
	},
	{
		problem: func(c *Config) string {
			if c.Server.Port < 1 || c.Server.Port > 65535 {
				return fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port)
			}
			return ""
		},
		reset: func(c, d *Config) { c.Server.Port = d.Server.Port },
	},
	{
		problem: func(c *Config) string {
			if c.Server.ShutdownTimeout <= 0 {
				return "server.shutdown_timeout must be positive"
			}
			return ""
		},
		reset: func(c, d *Config) { c.Server.ShutdownTimeout = d.Server.ShutdownTimeout },
	},
	{
		problem: func(c *Config) string {
			if c.Server.UploadMaxMB <= 0 {
				return "server.upload_max_mb must be positive"
			}
			return ""
		},
		reset: func(c, d *Config) { c.Server.UploadMaxMB = d.Server.UploadMaxMB },
	},
	{
		problem: func(c *Config) string {
			if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
				return "telemetry.sample_rate must be between 0 and 1"
			}
			return ""
		},
		reset: func(c, d *Config) { c.Telemetry.SampleRate = d.Telemetry.SampleRate },
	},
}

// Validate reports settings no component could run with. Every failure
// matches rag.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	var problems []string
	for _, chk := range checks {
		if p := chk.problem(c); p != "" {
			problems = append(problems, p)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", rag.ErrInvalidConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// RepairInvalid restores every setting Validate would reject to its default
// and returns the problems it fixed. Afterwards Validate returns nil.
func (c *Config) RepairInvalid() []string {
	d := Default()
	var repaired []string
	for _, chk := range checks {
		if p := chk.problem(c); p != "" {
			chk.reset(c, d)
			repaired = append(repaired, p)
		}
	}
	return repaired
}
