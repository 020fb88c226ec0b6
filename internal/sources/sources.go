// Package sources wraps the public biomedical search APIs the service
// proxies. Each client is a thin pass-through: one request, one decoded
// response, no retries and no state.
package sources

import "context"

// Item is the normalized shape every source returns.
type Item struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	URL     string   `json:"url"`
	Tags    []string `json:"tags"`
}

// Searcher is the contract for one upstream search API.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]Item, error)
}
