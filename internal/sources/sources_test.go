package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nacala04/ripel-gosset-wrapper/config"
)

func testSourceConfig(endpoint string) config.SourceConfig {
	return config.SourceConfig{Endpoint: endpoint, MaxResults: 5, Timeout: 5 * time.Second}
}

func TestPubMedSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "esearch"):
			if got := r.URL.Query().Get("term"); got != "shp2 inhibitors" {
				t.Errorf("unexpected term %q", got)
			}
			w.Write([]byte(`{"esearchresult":{"idlist":["11111","22222"]}}`))
		case strings.Contains(r.URL.Path, "esummary"):
			if got := r.URL.Query().Get("id"); got != "11111,22222" {
				t.Errorf("unexpected ids %q", got)
			}
			w.Write([]byte(`{"result":{
				"uids":["11111","22222"],
				"11111":{"title":"SHP2 inhibitors in KRAS tumors","source":"Nat Rev","pubdate":"2024 Jan"},
				"22222":{"title":"Allosteric pockets of PTPN11","source":"Cell","pubdate":"2023 Nov"}}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := NewPubMed(testSourceConfig(srv.URL))
	items, err := p.Search(context.Background(), "shp2 inhibitors")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "pmid_11111" || items[0].Title != "SHP2 inhibitors in KRAS tumors" {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[0].URL != "https://pubmed.ncbi.nlm.nih.gov/11111/" {
		t.Fatalf("unexpected url %q", items[0].URL)
	}
	if items[0].Summary != "Nat Rev (2024 Jan)" {
		t.Fatalf("unexpected summary %q", items[0].Summary)
	}
}

func TestPubMedSearchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"esearchresult":{"idlist":[]}}`))
	}))
	defer srv.Close()

	p := NewPubMed(testSourceConfig(srv.URL))
	items, err := p.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %v", items)
	}
}

func TestClinicalTrialsSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query.term"); got != "KRAS" {
			t.Errorf("unexpected query %q", got)
		}
		w.Write([]byte(`{"studies":[{"protocolSection":{
			"identificationModule":{"nctId":"NCT01234567","briefTitle":"SHP2 inhibitor trial"},
			"descriptionModule":{"briefSummary":"Phase I dose escalation."}}}]}`))
	}))
	defer srv.Close()

	c := NewClinicalTrials(testSourceConfig(srv.URL))
	items, err := c.Search(context.Background(), "KRAS")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ID != "nct_NCT01234567" || items[0].URL != "https://clinicaltrials.gov/study/NCT01234567" {
		t.Fatalf("unexpected item %+v", items[0])
	}
	if items[0].Tags[0] != "trial" {
		t.Fatalf("unexpected tags %v", items[0].Tags)
	}
}

func TestClinicalTrialsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClinicalTrials(testSourceConfig(srv.URL))
	if _, err := c.Search(context.Background(), "KRAS"); err == nil {
		t.Fatalf("expected error on upstream failure")
	}
}

func TestOpenTargetsSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Write([]byte(`{"data":{"search":{"hits":[
			{"id":"ENSG00000179295","name":"PTPN11","entity":"target","description":"SHP2 phosphatase"}]}}}`))
	}))
	defer srv.Close()

	o := NewOpenTargets(testSourceConfig(srv.URL))
	items, err := o.Search(context.Background(), "PTPN11")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].ID != "ot_ENSG00000179295" {
		t.Fatalf("unexpected id %q", items[0].ID)
	}
	if items[0].URL != "https://platform.opentargets.org/target/ENSG00000179295" {
		t.Fatalf("unexpected url %q", items[0].URL)
	}
}

func TestOpenTargetsGraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"syntax error"}]}`))
	}))
	defer srv.Close()

	o := NewOpenTargets(testSourceConfig(srv.URL))
	if _, err := o.Search(context.Background(), "PTPN11"); err == nil {
		t.Fatalf("expected error on graphql failure")
	}
}
