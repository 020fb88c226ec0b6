package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nacala04/ripel-gosset-wrapper/config"
)

// ClinicalTrials searches the ClinicalTrials.gov v2 API.
type ClinicalTrials struct {
	Endpoint   string
	MaxResults int
	httpClient *http.Client
}

// NewClinicalTrials creates a ClinicalTrials.gov client from configuration
func NewClinicalTrials(cfg config.SourceConfig) *ClinicalTrials {
	return &ClinicalTrials{
		Endpoint:   cfg.Endpoint,
		MaxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *ClinicalTrials) Name() string { return "clinicaltrials" }

func (c *ClinicalTrials) Search(ctx context.Context, query string) ([]Item, error) {
	params := url.Values{}
	params.Add("query.term", query)
	params.Add("pageSize", fmt.Sprintf("%d", c.MaxResults))
	params.Add("format", "json")

	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/studies?%s", c.Endpoint, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clinicaltrials: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clinicaltrials error: %s", resp.Status)
	}

	var result struct {
		Studies []struct {
			ProtocolSection struct {
				IdentificationModule struct {
					NCTID      string `json:"nctId"`
					BriefTitle string `json:"briefTitle"`
				} `json:"identificationModule"`
				DescriptionModule struct {
					BriefSummary string `json:"briefSummary"`
				} `json:"descriptionModule"`
			} `json:"protocolSection"`
		} `json:"studies"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]Item, 0, len(result.Studies))
	for _, study := range result.Studies {
		ident := study.ProtocolSection.IdentificationModule
		if ident.NCTID == "" {
			continue
		}
		items = append(items, Item{
			ID:      "nct_" + ident.NCTID,
			Title:   ident.BriefTitle,
			Summary: study.ProtocolSection.DescriptionModule.BriefSummary,
			URL:     fmt.Sprintf("https://clinicaltrials.gov/study/%s", ident.NCTID),
			Tags:    []string{"trial"},
		})
	}
	return items, nil
}
