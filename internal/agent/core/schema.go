package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nacala04/ripel-gosset-wrapper/provider"
	"github.com/nacala04/ripel-gosset-wrapper/provider/models"
)

const inferSystemPrompt = "You are a helpful AI assistant."

// defaultFields is the fallback schema used whenever inference fails.
var defaultFields = []string{"name", "description"}

// Inferencer proposes output field names for a task. Inference is advisory:
// any failure silently degrades to the default schema, and the result only
// steers the model's output shape, it is never enforced on returned items.
type Inferencer struct {
	provider    provider.Provider
	logger      *log.Logger
	maxTokens   int
	temperature float64
}

// NewInferencer creates a schema inferencer bound to one provider
func NewInferencer(p provider.Provider, logger *log.Logger, maxTokens int, temperature float64) *Inferencer {
	return &Inferencer{provider: p, logger: logger, maxTokens: maxTokens, temperature: temperature}
}

// InferFields asks the model which fields to extract for the task. The
// returned schema is always non-empty.
func (i *Inferencer) InferFields(ctx context.Context, task string) []string {
	prompt := fmt.Sprintf(`Given this task: "%s"
What fields should I extract? Return only a JSON array of field names in snake_case format.
For example: ["company_name", "revenue", "employee_count"]
Keep the fields simple and focused on the core information requested.`, task)

	resp, err := i.provider.Create(ctx, models.Request{
		Messages:    []models.Message{models.TextMessage(models.RoleUser, prompt)},
		System:      inferSystemPrompt,
		MaxTokens:   i.maxTokens,
		Temperature: i.temperature,
	})
	if err != nil {
		i.logger.Printf("field inference failed: %v", err)
		return defaultFields
	}

	text := resp.FirstText()
	if text == "" {
		return defaultFields
	}

	var fields []string
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		i.logger.Printf("field inference returned unparseable schema: %v", err)
		return defaultFields
	}
	fields = dedupeFields(fields)
	if len(fields) == 0 {
		return defaultFields
	}
	return fields
}

// dedupeFields drops empty and repeated names while preserving order.
func dedupeFields(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
