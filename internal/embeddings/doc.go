// Package embeddings turns text into dense vectors for the knowledge base.
//
// Two providers are available:
//
//   - fastembed: local ONNX inference through fastembed-go. The default
//     model is all-MiniLM-L6-v2 (384 dimensions), downloaded once into the
//     model cache directory.
//   - openai: any OpenAI-compatible /embeddings endpoint, reached through
//     langchaingo.
//
// NewProvider selects a provider by name and wraps it with OpenTelemetry
// instrumentation.
package embeddings
