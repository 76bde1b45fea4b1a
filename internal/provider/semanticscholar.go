// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,year,venue,url,citationCount,influentialCitationCount"

// SemanticScholar queries the Semantic Scholar graph API.
type SemanticScholar struct {
	Client  *http.Client
	Limiter *Limiter
	APIKey  string
}

// Name returns the provider identifier.
func (s *SemanticScholar) Name() types.Provider { return types.ProviderSemanticScholar }

// Search queries Semantic Scholar for one query variant.
func (s *SemanticScholar) Search(ctx context.Context, variant string, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(variant) == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}

	params := url.Values{
		"query":  {variant},
		"limit":  {fmt.Sprintf("%d", maxResults(cfg.MaxResults, 100))},
		"fields": {semanticFields},
	}

	var headers map[string]string
	if s.APIKey != "" {
		headers = map[string]string{"x-api-key": s.APIKey}
	}

	body, err := fetch(ctx, s.Client, s.Limiter, semanticAPIBase+"?"+params.Encode(), cfg.UserAgent, headers)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}

	var sr semanticResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var records []types.PaperRecord
	for _, paper := range sr.Data {
		r := types.PaperRecord{
			Title:          paper.Title,
			Venue:          paper.Venue,
			Year:           paper.Year,
			URL:            paper.URL,
			Abstract:       paper.Abstract,
			Source:         types.ProviderSemanticScholar,
			CitationImpact: paper.CitationCount + paper.InfluentialCitationCount,
		}
		for _, a := range paper.Authors {
			r.Authors = append(r.Authors, a.Name)
		}
		records = append(records, r)
	}
	return records, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	Title                    string           `json:"title"`
	Abstract                 string           `json:"abstract"`
	Venue                    string           `json:"venue"`
	Year                     int              `json:"year"`
	URL                      string           `json:"url"`
	CitationCount            int              `json:"citationCount"`
	InfluentialCitationCount int              `json:"influentialCitationCount"`
	Authors                  []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}
