package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nacala04/ripel-gosset-wrapper/config"
)

// PubMed searches the NCBI E-utilities API (esearch + esummary).
type PubMed struct {
	Endpoint   string
	APIKey     string
	MaxResults int
	httpClient *http.Client
}

// NewPubMed creates a PubMed client from configuration
func NewPubMed(cfg config.SourceConfig) *PubMed {
	return &PubMed{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		MaxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *PubMed) Name() string { return "pubmed" }

func (p *PubMed) Search(ctx context.Context, query string) ([]Item, error) {
	ids, err := p.searchIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Item{}, nil
	}
	return p.summaries(ctx, ids)
}

func (p *PubMed) searchIDs(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Add("db", "pubmed")
	params.Add("term", query)
	params.Add("retmode", "json")
	params.Add("retmax", fmt.Sprintf("%d", p.MaxResults))
	if p.APIKey != "" {
		params.Add("api_key", p.APIKey)
	}

	var result struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := p.getJSON(ctx, fmt.Sprintf("%s/esearch.fcgi?%s", p.Endpoint, params.Encode()), &result); err != nil {
		return nil, err
	}
	return result.ESearchResult.IDList, nil
}

func (p *PubMed) summaries(ctx context.Context, ids []string) ([]Item, error) {
	params := url.Values{}
	params.Add("db", "pubmed")
	params.Add("id", strings.Join(ids, ","))
	params.Add("retmode", "json")
	if p.APIKey != "" {
		params.Add("api_key", p.APIKey)
	}

	var result struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := p.getJSON(ctx, fmt.Sprintf("%s/esummary.fcgi?%s", p.Endpoint, params.Encode()), &result); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		raw, ok := result.Result[id]
		if !ok {
			continue
		}
		var doc struct {
			Title   string `json:"title"`
			Source  string `json:"source"`
			PubDate string `json:"pubdate"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		summary := doc.Source
		if doc.PubDate != "" {
			summary = strings.TrimSpace(summary + " (" + doc.PubDate + ")")
		}
		items = append(items, Item{
			ID:      "pmid_" + id,
			Title:   doc.Title,
			Summary: summary,
			URL:     fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", id),
			Tags:    []string{"paper"},
		})
	}
	return items, nil
}

func (p *PubMed) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch pubmed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pubmed error: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
