package core

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nacala04/ripel-gosset-wrapper/provider/models"
)

func exchangeMessages(text string) []models.Message {
	return []models.Message{models.TextMessage(models.RoleUser, text)}
}

func TestRunExchangeDepthBudgetTerminates(t *testing.T) {
	// A model that always requests tools must still terminate via the depth
	// budget, without a further service call once it is spent.
	steps := make([]providerStep, 0, 3)
	for i := 0; i < 3; i++ {
		steps = append(steps, providerStep{resp: toolUseResponse(
			toolUseBlock("call-1", toolSearchWeb, `{"query":"q"}`),
		)})
	}
	p := &scriptedProvider{steps: steps}
	d := testDriver(p, testExecutors(fakeSearcher{urls: []string{"https://example.com"}}, fakeFetcher{}))

	resp := d.RunExchange(context.Background(), exchangeMessages("go"), toolCatalog(), 3)

	if len(p.calls) != 3 {
		t.Fatalf("expected exactly 3 provider calls, got %d", len(p.calls))
	}
	if resp.StopReason != models.StopEndTurn {
		t.Fatalf("expected terminal stop reason, got %q", resp.StopReason)
	}
	if resp.FirstText() != "Max API calls reached." {
		t.Fatalf("unexpected terminal text %q", resp.FirstText())
	}
}

func TestRunExchangeToolFailureFeedsErrorResultBack(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{
		{resp: toolUseResponse(toolUseBlock("call-9", toolSearchWeb, `{"query":"q"}`))},
		{resp: actionResponse(nil, "adapted", "")},
	}}
	d := testDriver(p, testExecutors(fakeSearcher{err: errors.New("rate limited")}, fakeFetcher{}))

	resp := d.RunExchange(context.Background(), exchangeMessages("go"), toolCatalog(), 5)

	if len(p.calls) != 2 {
		t.Fatalf("expected the exchange to continue after the tool failure, got %d calls", len(p.calls))
	}
	followup := p.calls[1].Messages
	if len(followup) != 3 {
		t.Fatalf("expected original turn + assistant turn + tool results, got %d messages", len(followup))
	}
	last := followup[2]
	if last.Role != models.RoleUser {
		t.Fatalf("expected tool results in a user turn, got role %q", last.Role)
	}
	result := last.Content[0]
	if result.Type != models.BlockToolResult || result.ToolUseID != "call-9" {
		t.Fatalf("expected tool result echoing call-9, got %+v", result)
	}
	if !strings.Contains(result.Content, "Tool error") {
		t.Fatalf("expected error-bearing tool result, got %q", result.Content)
	}
	if resp.FirstText() == "" {
		t.Fatalf("expected terminal response text")
	}
}

func TestRunExchangeAnswersUnknownTool(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{
		{resp: toolUseResponse(toolUseBlock("call-2", "launch_rockets", `{}`))},
		{resp: actionResponse(nil, "", "")},
	}}
	d := testDriver(p, testExecutors(fakeSearcher{}, fakeFetcher{}))

	d.RunExchange(context.Background(), exchangeMessages("go"), toolCatalog(), 5)

	if len(p.calls) != 2 {
		t.Fatalf("expected the exchange to continue, got %d calls", len(p.calls))
	}
	result := p.calls[1].Messages[2].Content[0]
	if result.ToolUseID != "call-2" {
		t.Fatalf("expected tool result for call-2, got %+v", result)
	}
	if !strings.Contains(result.Content, "Unknown tool") {
		t.Fatalf("expected unknown-tool error result, got %q", result.Content)
	}
}

func TestRunExchangeTransportFailureIsParseable(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{{err: errors.New("401 unauthorized")}}}
	d := testDriver(p, testExecutors(fakeSearcher{}, fakeFetcher{}))

	resp := d.RunExchange(context.Background(), exchangeMessages("go"), toolCatalog(), 5)

	if resp.StopReason != models.StopEndTurn {
		t.Fatalf("expected terminal stop reason, got %q", resp.StopReason)
	}
	parsed := parseActionResult(resp)
	if len(parsed.Results) != 0 {
		t.Fatalf("expected empty results, got %v", parsed.Results)
	}
	if !strings.Contains(parsed.Comments, "Error") || !strings.Contains(parsed.Comments, "401 unauthorized") {
		t.Fatalf("expected error comment, got %q", parsed.Comments)
	}
	if parsed.NextAction != "" {
		t.Fatalf("expected empty next action, got %q", parsed.NextAction)
	}
}

func TestRunExchangeReturnsPlainResponseUnchanged(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{
		{resp: actionResponse(items("direct"), "no tools needed", "")},
	}}
	d := testDriver(p, testExecutors(fakeSearcher{}, fakeFetcher{}))

	resp := d.RunExchange(context.Background(), exchangeMessages("go"), toolCatalog(), 5)

	parsed := parseActionResult(resp)
	if len(parsed.Results) != 1 || parsed.Comments != "no tools needed" {
		t.Fatalf("expected the scripted answer back unchanged, got %+v", parsed)
	}
}

func TestExecuteSearchWebSerializesURLs(t *testing.T) {
	e := testExecutors(fakeSearcher{urls: []string{"https://a.example", "https://b.example"}}, fakeFetcher{})

	content := e.Execute(context.Background(), toolSearchWeb, json.RawMessage(`{"query":"shp2 inhibitors"}`))

	var urls []string
	if err := json.Unmarshal([]byte(content), &urls); err != nil {
		t.Fatalf("expected JSON array of urls, got %q: %v", content, err)
	}
	if len(urls) != 2 || urls[0] != "https://a.example" {
		t.Fatalf("unexpected urls %v", urls)
	}
}

func TestExecuteFetchPageFailureMarker(t *testing.T) {
	e := testExecutors(fakeSearcher{}, fakeFetcher{err: errors.New("timeout")})

	content := e.Execute(context.Background(), toolFetchPage, json.RawMessage(`{"url":"https://a.example"}`))

	if content != "Failed to fetch page" {
		t.Fatalf("expected failure marker, got %q", content)
	}
}
