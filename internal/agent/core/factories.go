package core

import (
	"fmt"
	"log"

	"github.com/nacala04/ripel-gosset-wrapper/config"
	"github.com/nacala04/ripel-gosset-wrapper/internal/agent/telemetry"
	"github.com/nacala04/ripel-gosset-wrapper/provider"
	"github.com/nacala04/ripel-gosset-wrapper/tools/web_fetch"
	"github.com/nacala04/ripel-gosset-wrapper/tools/web_search"
)

// NewLLMProvider creates a language-model provider based on configuration
func NewLLMProvider(cfg config.LLMConfig) (provider.Provider, error) {
	p, err := provider.NewProvider(provider.Client(cfg.Provider), cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return p, nil
}

// NewToolExecutors creates the web tool executors based on configuration
func NewToolExecutors(cfg config.ToolsConfig) (ToolExecutors, error) {
	searchKey := cfg.WebSearch.SerperAPIKey
	if web_search.Provider(cfg.WebSearch.Provider) == web_search.BraveProvider {
		searchKey = cfg.WebSearch.BraveAPIKey
	}
	searcher, err := web_search.NewWebSearcher(web_search.Provider(cfg.WebSearch.Provider), searchKey)
	if err != nil {
		return ToolExecutors{}, fmt.Errorf("failed to create web searcher: %w", err)
	}
	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.WebFetch.Type), cfg.WebFetch.Timeout, cfg.WebFetch.MaxChars, cfg.WebFetch.UserAgent)
	if err != nil {
		return ToolExecutors{}, fmt.Errorf("failed to create web fetcher: %w", err)
	}
	return ToolExecutors{
		Searcher:         searcher,
		Fetcher:          fetcher,
		MaxSearchResults: cfg.WebSearch.MaxResults,
	}, nil
}

// NewResearchOrchestrator assembles the full research pipeline from config:
// provider, tool executors, schema inferencer, conversation driver and the
// orchestrator on top.
func NewResearchOrchestrator(cfg *config.Config, logger *log.Logger, tele *telemetry.Telemetry) (*Orchestrator, error) {
	llmProvider, err := NewLLMProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	executors, err := NewToolExecutors(cfg.Tools)
	if err != nil {
		return nil, err
	}
	inferencer := NewInferencer(llmProvider, logger, cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	driver := NewDriver(llmProvider, executors, logger, tele, cfg.LLM.MaxTokens, cfg.LLM.Temperature)
	return NewOrchestrator(inferencer, driver, logger, tele, cfg.Research.MaxCallDepth), nil
}
