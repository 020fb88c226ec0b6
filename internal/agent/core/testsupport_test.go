package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/nacala04/ripel-gosset-wrapper/internal/agent/telemetry"
	"github.com/nacala04/ripel-gosset-wrapper/provider/models"
	fetchmodels "github.com/nacala04/ripel-gosset-wrapper/tools/web_fetch/models"
	searchmodels "github.com/nacala04/ripel-gosset-wrapper/tools/web_search/models"
)

type providerStep struct {
	resp models.Response
	err  error
}

// scriptedProvider replays a fixed sequence of responses and records every
// request it receives.
type scriptedProvider struct {
	steps []providerStep
	calls []models.Request
}

func (p *scriptedProvider) Create(_ context.Context, req models.Request) (models.Response, error) {
	p.calls = append(p.calls, req)
	if len(p.steps) == 0 {
		return models.Response{}, errors.New("scripted provider exhausted")
	}
	step := p.steps[0]
	p.steps = p.steps[1:]
	return step.resp, step.err
}

type fakeSearcher struct {
	urls []string
	err  error
}

func (s fakeSearcher) Discover(_ context.Context, _ string, k int) ([]searchmodels.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []searchmodels.Result
	for i, u := range s.urls {
		if i >= k {
			break
		}
		out = append(out, searchmodels.Result{URL: u})
	}
	return out, nil
}

type fakeFetcher struct {
	text string
	err  error
}

func (f fakeFetcher) Exec(_ context.Context, url string) (fetchmodels.Result, error) {
	if f.err != nil {
		return fetchmodels.Result{}, f.err
	}
	return fetchmodels.Result{URL: url, Text: f.text, Status: 200}, nil
}

func testExecutors(searcher fakeSearcher, fetcher fakeFetcher) ToolExecutors {
	return ToolExecutors{Searcher: searcher, Fetcher: fetcher, MaxSearchResults: 10}
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testDriver(p *scriptedProvider, tools ToolExecutors) *Driver {
	return NewDriver(p, tools, testLogger(), &telemetry.Telemetry{}, 1024, 0)
}

func testOrchestrator(p *scriptedProvider, tools ToolExecutors, maxDepth int) *Orchestrator {
	inferencer := NewInferencer(p, testLogger(), 1024, 0)
	driver := testDriver(p, tools)
	return NewOrchestrator(inferencer, driver, testLogger(), &telemetry.Telemetry{}, maxDepth)
}

// actionResponse fabricates a terminal model answer in the JSON contract the
// orchestrator parses.
func actionResponse(results []map[string]interface{}, comments, nextAction string) models.Response {
	payload, _ := json.Marshal(map[string]interface{}{
		"results":     results,
		"comments":    comments,
		"next_action": nextAction,
	})
	return models.TextResponse(string(payload))
}

// fieldsResponse fabricates a schema-inference answer.
func fieldsResponse(text string) providerStep {
	return providerStep{resp: models.TextResponse(text)}
}

func items(titles ...string) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(titles))
	for _, title := range titles {
		out = append(out, map[string]interface{}{"name": title})
	}
	return out
}

func toolUseResponse(blocks ...models.ContentBlock) models.Response {
	return models.Response{StopReason: models.StopToolUse, Content: blocks}
}

func toolUseBlock(id, name, input string) models.ContentBlock {
	return models.ContentBlock{Type: models.BlockToolUse, ID: id, Name: name, Input: json.RawMessage(input)}
}
