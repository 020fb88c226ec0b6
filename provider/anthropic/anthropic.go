package anthropic_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nacala04/ripel-gosset-wrapper/provider/models"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
)

// client implements the provider interface using Anthropic's Messages API
type client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// request represents a request to the Anthropic Messages API
type request struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	System      string           `json:"system,omitempty"`
	Messages    []models.Message `json:"messages"`
	Tools       []models.Tool    `json:"tools,omitempty"`
}

// response represents a response from the Anthropic Messages API
type response struct {
	Content    []models.ContentBlock `json:"content"`
	StopReason string                `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(apiKey, baseURL, model string, timeout time.Duration) *client {
	if baseURL == "" {
		baseURL = anthropicAPIURL
	}
	return &client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Create sends one message exchange to the Anthropic Messages API
func (c *client) Create(ctx context.Context, req models.Request) (models.Response, error) {
	if c.apiKey == "" {
		return models.Response{}, fmt.Errorf("anthropic api key is not set")
	}

	requestBody := request{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    req.Messages,
		Tools:       req.Tools,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return models.Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return models.Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return models.Response{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if apiResp.Error != nil {
			return models.Response{}, fmt.Errorf("API error (%s): %s", apiResp.Error.Type, apiResp.Error.Message)
		}
		return models.Response{}, fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	if len(apiResp.Content) == 0 {
		return models.Response{}, fmt.Errorf("empty content in response")
	}

	return models.Response{StopReason: apiResp.StopReason, Content: apiResp.Content}, nil
}
