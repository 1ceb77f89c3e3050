package http

import "github.com/fyrsmithlabs/strategist/internal/strategist"

// StrategyRequest is the body for POST /strategies.
type StrategyRequest struct {
	Description string `json:"description" form:"description"`
}

// StrategyResponse is the JSON body returned by POST /strategies.
type StrategyResponse struct {
	Description string `json:"description"`
	Strategy    string `json:"strategy"`
	// PDF is the file name to pass to GET /strategies/:file, empty if saving
	// failed.
	PDF string `json:"pdf,omitempty"`
}

// UploadResponse is the JSON body returned by POST /documents.
type UploadResponse struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

// ErrorResponse carries a user-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the response body for GET /api/v1/status.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	// Chunks is -1 when the vector store could not be counted.
	Chunks int              `json:"chunks"`
	Cache  strategist.Stats `json:"cache"`
}

// ClearCacheResponse is the response body for DELETE /api/v1/cache.
type ClearCacheResponse struct {
	Cleared int `json:"cleared"`
}

// pageData feeds the index template.
type pageData struct {
	Description string
	Strategy    string
	Failure     string
	PDF         string
	Notice      string
	Error       string
	Chunks      int
	Cache       strategist.Stats
}
