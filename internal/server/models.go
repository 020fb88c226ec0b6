package server

import (
	"github.com/nacala04/ripel-gosset-wrapper/internal/sources"
)

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// QueryRequest is the research request payload.
type QueryRequest struct {
	Query       string `json:"query"`
	MaxSearches int    `json:"max_searches"`
	MaxResults  int    `json:"max_results"`
}

// ResearchResponse carries one completed research run.
type ResearchResponse struct {
	QueryID  string                   `json:"query_id"`
	Results  []map[string]interface{} `json:"results"`
	Comments string                   `json:"comments"`
}

// MCPRequest is the pass-through source request payload.
type MCPRequest struct {
	Query string `json:"query"`
}

// MCPResponse carries pass-through source results.
type MCPResponse struct {
	Source string         `json:"source"`
	Items  []sources.Item `json:"items"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	OK bool `json:"ok"`
}
