package core

import (
	"encoding/json"

	"github.com/nacala04/ripel-gosset-wrapper/provider/models"
)

// Task represents one research request, bounded by two independent budgets
type Task struct {
	Query       string `json:"query"`
	MaxSearches int    `json:"max_searches"` // iteration budget
	MaxResults  int    `json:"max_results"`  // accumulated result budget
}

// TaskResult is the final output of a research run. ProcessTask always
// returns one, even when every outbound call failed.
type TaskResult struct {
	Results  []map[string]interface{} `json:"results"`
	Comments string                   `json:"comments"`
}

// actionResult is one iteration's parsed model output. The model is
// instructed to answer with exactly this JSON shape; anything else is
// treated as the zero value, which ends the run.
type actionResult struct {
	Results    []map[string]interface{} `json:"results"`
	Comments   string                   `json:"comments"`
	NextAction string                   `json:"next_action"`
}

// parseActionResult extracts the first text block of a terminal exchange
// response and decodes it. Malformed or missing JSON degrades to an empty
// result with no next action rather than an error.
func parseActionResult(resp models.Response) actionResult {
	text := resp.FirstText()
	if text == "" {
		return actionResult{}
	}
	var result actionResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return actionResult{}
	}
	return result
}
