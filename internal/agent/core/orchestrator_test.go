package core

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestProcessTaskTruncatesAtResultBudget(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{
		fieldsResponse(`["name"]`),
		{resp: actionResponse(items("a", "b", "c", "d", "e"), "plenty", "keep going")},
	}}
	o := testOrchestrator(p, testExecutors(fakeSearcher{}, fakeFetcher{}), 5)

	res := o.ProcessTask(context.Background(), Task{Query: "find things", MaxSearches: 5, MaxResults: 3})

	if len(res.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res.Results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if res.Results[i]["name"] != want {
			t.Fatalf("expected result %d to be %q, got %v", i, want, res.Results[i]["name"])
		}
	}
	// one inference call plus exactly one exchange: the filled result budget
	// must stop further iterations
	if len(p.calls) != 2 {
		t.Fatalf("expected 2 provider calls, got %d", len(p.calls))
	}
	if strings.Contains(res.Comments, "Search limit reached") {
		t.Fatalf("did not expect search limit note, got %q", res.Comments)
	}
}

func TestProcessTaskIterationBudgetAppendsNote(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{
		fieldsResponse(`["name"]`),
		{resp: actionResponse(items("itemA", "itemB"), "found two papers", "look further")},
	}}
	o := testOrchestrator(p, testExecutors(fakeSearcher{}, fakeFetcher{}), 5)

	res := o.ProcessTask(context.Background(), Task{Query: "find 2 papers about X", MaxSearches: 1, MaxResults: 10})

	if len(res.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res.Results))
	}
	if !strings.HasPrefix(res.Comments, "found two papers") {
		t.Fatalf("expected last iteration comments, got %q", res.Comments)
	}
	if !strings.Contains(res.Comments, "Search limit reached: true") {
		t.Fatalf("expected search limit note, got %q", res.Comments)
	}
	if len(p.calls) != 2 {
		t.Fatalf("expected 2 provider calls, got %d", len(p.calls))
	}
}

func TestProcessTaskEmptyNextActionStops(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{
		fieldsResponse(`["name"]`),
		{resp: actionResponse(items("itemA"), "done early", "")},
	}}
	o := testOrchestrator(p, testExecutors(fakeSearcher{}, fakeFetcher{}), 5)

	res := o.ProcessTask(context.Background(), Task{Query: "find one thing", MaxSearches: 5, MaxResults: 10})

	if len(res.Results) != 1 || res.Results[0]["name"] != "itemA" {
		t.Fatalf("expected exactly [itemA], got %v", res.Results)
	}
	if strings.Contains(res.Comments, "Search limit reached") {
		t.Fatalf("did not expect search limit note, got %q", res.Comments)
	}
	if len(p.calls) != 2 {
		t.Fatalf("expected 2 provider calls, got %d", len(p.calls))
	}
}

func TestProcessTaskTransportFailureReturnsErrorComment(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
	}}
	o := testOrchestrator(p, testExecutors(fakeSearcher{}, fakeFetcher{}), 5)

	res := o.ProcessTask(context.Background(), Task{Query: "anything", MaxSearches: 3, MaxResults: 5})

	if len(res.Results) != 0 {
		t.Fatalf("expected no results, got %v", res.Results)
	}
	if !strings.Contains(res.Comments, "Error") {
		t.Fatalf("expected error comment, got %q", res.Comments)
	}
}

func TestProcessTaskMalformedOutputEndsRun(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{
		fieldsResponse(`["name"]`),
		fieldsResponse("I could not produce JSON, sorry."),
	}}
	o := testOrchestrator(p, testExecutors(fakeSearcher{}, fakeFetcher{}), 5)

	res := o.ProcessTask(context.Background(), Task{Query: "anything", MaxSearches: 4, MaxResults: 5})

	if len(res.Results) != 0 {
		t.Fatalf("expected no results, got %v", res.Results)
	}
	if res.Comments != "" {
		t.Fatalf("expected empty comments, got %q", res.Comments)
	}
	if len(p.calls) != 2 {
		t.Fatalf("expected the run to end after one exchange, got %d provider calls", len(p.calls))
	}
}

func TestProcessTaskFeedsActionHistoryForward(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{
		fieldsResponse(`["name"]`),
		{resp: actionResponse(items("x"), "", "dig deeper into Y")},
		{resp: actionResponse(nil, "", "")},
	}}
	o := testOrchestrator(p, testExecutors(fakeSearcher{}, fakeFetcher{}), 5)

	res := o.ProcessTask(context.Background(), Task{Query: "find things", MaxSearches: 5, MaxResults: 10})

	if len(res.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(res.Results))
	}
	if len(p.calls) != 3 {
		t.Fatalf("expected 3 provider calls, got %d", len(p.calls))
	}
	prompt := p.calls[2].Messages[0].Content[0].Text
	if !strings.Contains(prompt, "dig deeper into Y") {
		t.Fatalf("expected second prompt to carry the proposed next action, got:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- dig deeper into Y") {
		t.Fatalf("expected second prompt to list the action history, got:\n%s", prompt)
	}
	first := p.calls[1].Messages[0].Content[0].Text
	if !strings.Contains(first, "Previous actions taken:\nNone") {
		t.Fatalf("expected first prompt to carry an empty history, got:\n%s", first)
	}
}

func TestProcessTaskZeroResultsWithNextActionContinues(t *testing.T) {
	p := &scriptedProvider{steps: []providerStep{
		fieldsResponse(`["name"]`),
		{resp: actionResponse(nil, "nothing yet", "try another query")},
		{resp: actionResponse(items("late find"), "got one", "")},
	}}
	o := testOrchestrator(p, testExecutors(fakeSearcher{}, fakeFetcher{}), 5)

	res := o.ProcessTask(context.Background(), Task{Query: "find things", MaxSearches: 5, MaxResults: 10})

	if len(res.Results) != 1 || res.Results[0]["name"] != "late find" {
		t.Fatalf("expected the second iteration's result, got %v", res.Results)
	}
	if res.Comments != "got one" {
		t.Fatalf("expected comments from the last iteration, got %q", res.Comments)
	}
}
