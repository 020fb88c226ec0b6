package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nacala04/ripel-gosset-wrapper/provider/models"
	"github.com/nacala04/ripel-gosset-wrapper/tools/web_fetch"
	"github.com/nacala04/ripel-gosset-wrapper/tools/web_search"
)

const (
	toolSearchWeb = "search_web"
	toolFetchPage = "fetch_page"
)

// toolCatalog is the fixed set of tools offered to the model on every exchange.
func toolCatalog() []models.Tool {
	return []models.Tool{
		{
			Name:        toolSearchWeb,
			Description: "Search the web",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Search query string",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        toolFetchPage,
			Description: "Fetch and parse webpage content. May return an error message if the page is not accessible.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url": map[string]interface{}{
						"type":        "string",
						"description": "URL to fetch",
					},
				},
				"required": []string{"url"},
			},
		},
	}
}

// ToolExecutors groups the external side-effecting actions the model may
// request during an exchange.
type ToolExecutors struct {
	Searcher         web_search.WebSearcher
	Fetcher          web_fetch.WebFetcher
	MaxSearchResults int
}

// Execute runs a single tool invocation and always produces printable
// content for the conversation: tool failures and unknown tool names come
// back as error text, never as an aborted exchange.
func (e ToolExecutors) Execute(ctx context.Context, name string, input json.RawMessage) string {
	switch name {
	case toolSearchWeb:
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(input, &args); err != nil {
			return fmt.Sprintf("Tool error: %v", err)
		}
		results, err := e.Searcher.Discover(ctx, args.Query, e.MaxSearchResults)
		if err != nil {
			return fmt.Sprintf("Tool error: %v", err)
		}
		urls := make([]string, 0, len(results))
		for _, r := range results {
			urls = append(urls, r.URL)
		}
		payload, err := json.Marshal(urls)
		if err != nil {
			return fmt.Sprintf("Tool error: %v", err)
		}
		return string(payload)
	case toolFetchPage:
		var args struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(input, &args); err != nil {
			return fmt.Sprintf("Tool error: %v", err)
		}
		page, err := e.Fetcher.Exec(ctx, args.URL)
		if err != nil || !page.Ok() {
			return "Failed to fetch page"
		}
		return page.Text
	default:
		// A tool_use request must never go unanswered: an unrecognized name
		// still gets a tool result so the conversation can continue.
		return fmt.Sprintf("Unknown tool: %s", name)
	}
}
