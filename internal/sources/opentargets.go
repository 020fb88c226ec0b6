package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nacala04/ripel-gosset-wrapper/config"
)

const openTargetsQuery = `query search($q: String!, $size: Int!) {
  search(queryString: $q, entityNames: ["target", "disease", "drug"], page: {index: 0, size: $size}) {
    hits { id name entity description }
  }
}`

// OpenTargets searches the Open Targets Platform GraphQL API.
type OpenTargets struct {
	Endpoint   string
	MaxResults int
	httpClient *http.Client
}

// NewOpenTargets creates an Open Targets client from configuration
func NewOpenTargets(cfg config.SourceConfig) *OpenTargets {
	return &OpenTargets{
		Endpoint:   cfg.Endpoint,
		MaxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (o *OpenTargets) Name() string { return "opentargets" }

func (o *OpenTargets) Search(ctx context.Context, query string) ([]Item, error) {
	requestBody := map[string]interface{}{
		"query":     openTargetsQuery,
		"variables": map[string]interface{}{"q": query, "size": o.MaxResults},
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opentargets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opentargets error: %s", resp.Status)
	}

	var result struct {
		Data struct {
			Search struct {
				Hits []struct {
					ID          string `json:"id"`
					Name        string `json:"name"`
					Entity      string `json:"entity"`
					Description string `json:"description"`
				} `json:"hits"`
			} `json:"search"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("opentargets error: %s", result.Errors[0].Message)
	}

	items := make([]Item, 0, len(result.Data.Search.Hits))
	for _, hit := range result.Data.Search.Hits {
		items = append(items, Item{
			ID:      "ot_" + hit.ID,
			Title:   hit.Name,
			Summary: hit.Description,
			URL:     fmt.Sprintf("https://platform.opentargets.org/%s/%s", hit.Entity, hit.ID),
			Tags:    []string{"opentargets"},
		})
	}
	return items, nil
}
