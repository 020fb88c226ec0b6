package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nacala04/ripel-gosset-wrapper/internal/agent/telemetry"
	"github.com/nacala04/ripel-gosset-wrapper/provider"
	"github.com/nacala04/ripel-gosset-wrapper/provider/models"
)

const exchangeSystemPrompt = "You are a research assistant helping users find and analyze information from the web."

// Driver runs a single exchange with the language model, resolving tool
// requests in-line until the model stops asking for tools or the call-depth
// budget is spent.
type Driver struct {
	provider    provider.Provider
	tools       ToolExecutors
	logger      *log.Logger
	telemetry   *telemetry.Telemetry
	maxTokens   int
	temperature float64
}

// NewDriver creates a conversation driver bound to one provider and tool set
func NewDriver(p provider.Provider, tools ToolExecutors, logger *log.Logger, tele *telemetry.Telemetry, maxTokens int, temperature float64) *Driver {
	return &Driver{
		provider:    p,
		tools:       tools,
		logger:      logger,
		telemetry:   tele,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// RunExchange sends the message list to the model and resolves tool-use
// round trips with a decrementing depth counter. It never returns an error:
// transport failures come back as a synthetic terminal response whose text
// parses exactly like a normal answer, so the orchestrator degrades to
// "no results, stop iterating" instead of crashing.
func (d *Driver) RunExchange(ctx context.Context, messages []models.Message, tools []models.Tool, remainingDepth int) models.Response {
	for {
		if remainingDepth <= 0 {
			return models.TextResponse("Max API calls reached.")
		}

		t0 := time.Now()
		resp, err := d.provider.Create(ctx, models.Request{
			Messages:    messages,
			Tools:       tools,
			System:      exchangeSystemPrompt,
			MaxTokens:   d.maxTokens,
			Temperature: d.temperature,
		})
		if err != nil {
			d.telemetry.RecordLLMRequest("error", time.Since(t0))
			d.logger.Printf("exchange failed: %v", err)
			payload, _ := json.Marshal(actionResult{
				Results:  []map[string]interface{}{},
				Comments: fmt.Sprintf("Error: %v", err),
			})
			return models.TextResponse(string(payload))
		}
		d.telemetry.RecordLLMRequest("ok", time.Since(t0))

		if resp.StopReason != models.StopToolUse {
			return resp
		}

		outputs := d.dispatchTools(ctx, resp.Content)
		if len(outputs) == 0 {
			return resp
		}

		// Continue the conversation by feeding tool results back to the model
		messages = append(messages, models.Message{Role: models.RoleAssistant, Content: resp.Content})
		messages = append(messages, models.Message{Role: models.RoleUser, Content: outputs})
		remainingDepth--
	}
}

// dispatchTools answers every tool_use block with a tool result echoing its
// correlation id. Individual tool failures become error text; they never
// abort the exchange.
func (d *Driver) dispatchTools(ctx context.Context, blocks []models.ContentBlock) []models.ContentBlock {
	var outputs []models.ContentBlock
	for _, block := range blocks {
		if block.Type != models.BlockToolUse {
			continue
		}
		d.telemetry.RecordToolInvocation(block.Name)
		content := d.tools.Execute(ctx, block.Name, block.Input)
		outputs = append(outputs, models.ToolResultBlock(block.ID, content))
	}
	return outputs
}
