package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultBaseURL is Groq's OpenAI-compatible API root.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// ErrMissingAPIKey is reported on every call when no API key was configured.
var ErrMissingAPIKey = errors.New("GROQ_API_KEY is not set")

// NewOpenAICompatibleModel builds a chat model for an OpenAI-compatible
// endpoint. An empty baseURL selects Groq.
func NewOpenAICompatibleModel(baseURL, model, apiKey string) (llms.Model, error) {
	if apiKey == "" {
		return missingKeyModel{}, nil
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	llm, err := openai.New(
		openai.WithModel(model),
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI-compatible client: %w", err)
	}
	return llm, nil
}

// missingKeyModel lets the application start without credentials; each
// generation then fails with ErrMissingAPIKey.
type missingKeyModel struct{}

func (missingKeyModel) GenerateContent(context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return nil, ErrMissingAPIKey
}

func (missingKeyModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", ErrMissingAPIKey
}
