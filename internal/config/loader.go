package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultPath is the settings file read when no path is given.
	DefaultPath = "settings.yaml"

	// EnvPrefix marks environment variables that override settings.
	EnvPrefix = "STRATEGIST_"

	// APIKeyEnv holds the Groq API key.
	APIKeyEnv = "GROQ_API_KEY"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// sections lists the top-level keys environment variables may target.
// Longest first so vector_db wins over a hypothetical "vector" section.
var sections = []string{
	"vector_db", "strategist", "generator", "resources", "telemetry",
	"prompts", "logging", "output", "server", "scrubbing",
}

// Load reads configuration from path, then applies environment overrides.
//
// Configuration precedence (highest to lowest):
//  1. STRATEGIST_* environment variables (STRATEGIST_GENERATOR_MODEL_NAME -> generator.model_name)
//  2. GROQ_API_KEY for generator.api_key
//  3. YAML file at path
//  4. Built-in defaults
//
// A missing file is not an error. A file that cannot be read or parsed
// yields Default() together with the error so callers can warn and carry on.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	k := koanf.New(".")

	content, err := readConfigFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Default(), err
	default:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		if err := k.Set("generator.api_key", key); err != nil {
			return Default(), fmt.Errorf("applying %s: %w", APIKeyEnv, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Default(), fmt.Errorf("loading environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return Default(), fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// envKey maps STRATEGIST_VECTOR_DB_CHUNK_SIZE to vector_db.chunk_size.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range sections {
		if field, ok := strings.CutPrefix(lower, section+"_"); ok {
			return section + "." + field
		}
	}
	return lower
}

// readConfigFile reads path, rejecting files over 1MB.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("opening config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return content, nil
}

// LoadEnvFile loads variables from a .env file without overriding ones
// already set. A missing file is ignored. It reports whether GROQ_API_KEY
// is available afterwards.
func LoadEnvFile(path string) (bool, error) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return os.Getenv(APIKeyEnv) != "", fmt.Errorf("loading %s: %w", path, err)
	}
	return os.Getenv(APIKeyEnv) != "", nil
}
