package provider

import (
	"context"
	"errors"
	"time"

	anthropic_provider "github.com/nacala04/ripel-gosset-wrapper/provider/anthropic"
	"github.com/nacala04/ripel-gosset-wrapper/provider/models"
)

// Client represents different LLM providers
type Client string

const (
	Anthropic Client = "anthropic"
)

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	Create(ctx context.Context, req models.Request) (models.Response, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(client Client, apiKey, baseURL, model string, timeout time.Duration) (Provider, error) {
	switch client {
	case Anthropic:
		if apiKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY not set")
		}
		return anthropic_provider.NewAnthropicClient(apiKey, baseURL, model, timeout), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
