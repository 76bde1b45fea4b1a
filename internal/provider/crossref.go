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

// crossrefAPIBase is the Crossref works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// Crossref queries the Crossref works API.
type Crossref struct {
	Client  *http.Client
	Limiter *Limiter

	// Mailto is the contact address sent for polite pool access.
	Mailto string
}

// Name returns the provider identifier.
func (c *Crossref) Name() types.Provider { return types.ProviderCrossref }

// Search queries Crossref for one query variant.
func (c *Crossref) Search(ctx context.Context, variant string, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(variant) == "" {
		return nil, fmt.Errorf("empty Crossref query")
	}

	params := url.Values{
		"query": {variant},
		"rows":  {fmt.Sprintf("%d", maxResults(cfg.MaxResults, 100))},
	}
	mailto := c.Mailto
	if mailto == "" {
		mailto = cfg.CrossrefMailto
	}
	if mailto != "" {
		params.Set("mailto", mailto)
	}

	body, err := fetch(ctx, c.Client, c.Limiter, crossrefAPIBase+"?"+params.Encode(), cfg.UserAgent, nil)
	if err != nil {
		return nil, fmt.Errorf("Crossref API request: %w", err)
	}

	var cr crossrefResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("parsing Crossref response: %w", err)
	}

	var records []types.PaperRecord
	for _, item := range cr.Message.Items {
		r := types.PaperRecord{
			URL:            item.URL,
			Abstract:       stripJATSMarkup(item.Abstract),
			Source:         types.ProviderCrossref,
			CitationImpact: item.IsReferencedByCount,
		}

		if len(item.Title) > 0 {
			r.Title = item.Title[0]
		}
		if len(item.ContainerTitle) > 0 {
			r.Venue = item.ContainerTitle[0]
		}
		for _, a := range item.Author {
			name := strings.TrimSpace(a.Given + " " + a.Family)
			if name != "" {
				r.Authors = append(r.Authors, name)
			}
		}
		if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
			r.Year = item.Issued.DateParts[0][0]
		}

		records = append(records, r)
	}
	return records, nil
}

// stripJATSMarkup removes the JATS XML tags Crossref embeds in abstracts
// (e.g. <jats:p>). Anything between angle brackets is dropped.
func stripJATSMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefItem `json:"items"`
}

type crossrefItem struct {
	Title               []string        `json:"title"`
	ContainerTitle      []string        `json:"container-title"`
	Author              []crossrefName  `json:"author"`
	Issued              crossrefIssued  `json:"issued"`
	URL                 string          `json:"URL"`
	Abstract            string          `json:"abstract"`
	IsReferencedByCount int             `json:"is-referenced-by-count"`
}

type crossrefName struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefIssued struct {
	DateParts [][]int `json:"date-parts"`
}
