// Package generator asks a chat model to write a marketing strategy from a
// campaign description and retrieved knowledge-base passages.
//
// The model is reached through langchaingo's llms.Model interface. By
// default an OpenAI-compatible client is built against Groq's endpoint.
// Failures are returned as *rag.GenerationError; FailureText renders one
// as the user-facing message.
package generator
