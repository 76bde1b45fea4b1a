// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Arxiv queries the arXiv Atom API.
type Arxiv struct {
	Client  *http.Client
	Limiter *Limiter
}

// Name returns the provider identifier.
func (a *Arxiv) Name() types.Provider { return types.ProviderArxiv }

// Search queries arXiv for one query variant.
func (a *Arxiv) Search(ctx context.Context, variant string, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(variant) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	terms := strings.Fields(variant)
	reqURL := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d",
		arxivAPIBase, url.QueryEscape(strings.Join(terms, "+")), maxResults(cfg.MaxResults, 100))

	body, err := fetch(ctx, a.Client, a.Limiter, reqURL, cfg.UserAgent, nil)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var records []types.PaperRecord
	for _, entry := range feed.Entries {
		r := types.PaperRecord{
			Title:    strings.Join(strings.Fields(entry.Title), " "),
			Venue:    "arXiv",
			URL:      entry.ID,
			Abstract: strings.TrimSpace(entry.Summary),
			Source:   types.ProviderArxiv,
		}

		for _, au := range entry.Authors {
			r.Authors = append(r.Authors, strings.TrimSpace(au.Name))
		}

		// Published dates are RFC 3339; the year prefix is enough.
		if len(entry.Published) >= 4 {
			if y, convErr := strconv.Atoi(entry.Published[:4]); convErr == nil {
				r.Year = y
			}
		}

		records = append(records, r)
	}
	return records, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
