package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nacala04/ripel-gosset-wrapper/internal/agent/telemetry"
	"github.com/nacala04/ripel-gosset-wrapper/provider/models"
)

// Stop reasons recorded per run.
const (
	stopIterationBudget = "iteration_budget"
	stopResultBudget    = "result_budget"
	stopModelDone       = "model_done"
)

const taskTemplate = `Your initial task is:

%s

{NEXT_TASK}

Previous actions taken:
{ACTION_HISTORY}

Required fields for each result: %s
Maximum results to collect: %d

If your task is to find information online, you can use search_web to search the web and fetch_page to get webpage content.

Return a JSON with:
- results: list of items matching the required fields (limit to %d total results)
- comments: any additional information about the results
- next_action: what should be searched or analyzed next (empty string if done)

MAKE SURE THAT YOU OUTPUT A VALID JSON OBJECT. DO NOT INCLUDE ANY OTHER TEXT.
If you cannot find information, return empty lists/strings as appropriate.`

// Orchestrator runs the top-level research loop: infer a field schema for
// the task, repeatedly drive one exchange per iteration, and accumulate
// results under the task's budgets.
type Orchestrator struct {
	inferencer   *Inferencer
	driver       *Driver
	logger       *log.Logger
	telemetry    *telemetry.Telemetry
	maxCallDepth int
}

// NewOrchestrator wires an orchestrator from its two stateful collaborators
func NewOrchestrator(inferencer *Inferencer, driver *Driver, logger *log.Logger, tele *telemetry.Telemetry, maxCallDepth int) *Orchestrator {
	return &Orchestrator{
		inferencer:   inferencer,
		driver:       driver,
		logger:       logger,
		telemetry:    tele,
		maxCallDepth: maxCallDepth,
	}
}

// ProcessTask processes a research task and returns accumulated results plus
// diagnostic comments. It always returns a result object; failures along the
// way surface through the comments field, never as an error.
func (o *Orchestrator) ProcessTask(ctx context.Context, task Task) TaskResult {
	startTime := time.Now()
	o.logger.Printf("starting task (max %d searches, max %d results): %s", task.MaxSearches, task.MaxResults, task.Query)

	fields := o.inferencer.InferFields(ctx, task.Query)
	o.logger.Printf("inferred fields: %s", strings.Join(fields, ", "))

	catalog := toolCatalog()
	render := promptRenderer(task, fields)

	var (
		allResults    []map[string]interface{}
		actionHistory []string
		lastComments  string
	)

	message := render("", "None")
	searchCount := 0
	stopReason := stopModelDone

	for {
		if searchCount >= task.MaxSearches {
			o.logger.Printf("reached maximum number of searches (%d)", task.MaxSearches)
			stopReason = stopIterationBudget
			break
		}

		resp := o.driver.RunExchange(ctx,
			[]models.Message{models.TextMessage(models.RoleUser, message)},
			catalog, o.maxCallDepth)
		searchCount++

		result := parseActionResult(resp)
		lastComments = result.Comments

		remaining := task.MaxResults - len(allResults)
		if remaining <= 0 {
			o.logger.Printf("reached maximum number of results (%d)", task.MaxResults)
			stopReason = stopResultBudget
			break
		}
		// Budgets are soft caps on volume: the overflowing tail is dropped
		// silently, preserving order.
		if len(result.Results) > remaining {
			result.Results = result.Results[:remaining]
		}
		allResults = append(allResults, result.Results...)
		if len(allResults) >= task.MaxResults {
			o.logger.Printf("reached maximum number of results (%d)", task.MaxResults)
			stopReason = stopResultBudget
			break
		}

		if result.NextAction == "" {
			stopReason = stopModelDone
			break
		}

		// Record the next action before executing it so the following
		// iteration sees the model's own prior intentions.
		actionHistory = append(actionHistory, result.NextAction)
		message = render(result.NextAction, bulletList(actionHistory))
	}

	comments := lastComments
	if stopReason == stopIterationBudget {
		comments += fmt.Sprintf("\nSearch limit reached: %t", true)
	}

	o.telemetry.RecordRun(stopReason, searchCount, len(allResults), time.Since(startTime))
	o.logger.Printf("task finished after %d search(es) with %d result(s)", searchCount, len(allResults))

	if allResults == nil {
		allResults = []map[string]interface{}{}
	}
	return TaskResult{Results: allResults, Comments: comments}
}

// promptRenderer builds the reusable prompt template for a run and returns a
// renderer over its two per-iteration slots.
func promptRenderer(task Task, fields []string) func(nextTask, history string) string {
	template := fmt.Sprintf(taskTemplate, task.Query, strings.Join(fields, ", "), task.MaxResults, task.MaxResults)
	return func(nextTask, history string) string {
		rendered := strings.Replace(template, "{NEXT_TASK}", nextTask, 1)
		return strings.Replace(rendered, "{ACTION_HISTORY}", history, 1)
	}
}

func bulletList(actions []string) string {
	var b strings.Builder
	for i, action := range actions {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(action)
	}
	return b.String()
}
