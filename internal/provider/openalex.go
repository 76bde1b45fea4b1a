// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// openAlexAPIBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlex queries the OpenAlex Works API.
type OpenAlex struct {
	Client  *http.Client
	Limiter *Limiter

	// Email is sent as the mailto parameter for polite pool access.
	Email string
}

// Name returns the provider identifier.
func (o *OpenAlex) Name() types.Provider { return types.ProviderOpenAlex }

// Search queries OpenAlex for one query variant.
func (o *OpenAlex) Search(ctx context.Context, variant string, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(variant) == "" {
		return nil, fmt.Errorf("empty OpenAlex query")
	}

	params := url.Values{
		"search":   {variant},
		"per_page": {fmt.Sprintf("%d", maxResults(cfg.MaxResults, 200))},
		"page":     {"1"},
	}
	email := o.Email
	if email == "" {
		email = cfg.OpenAlexEmail
	}
	if email != "" {
		params.Set("mailto", email)
	}

	body, err := fetch(ctx, o.Client, o.Limiter, openAlexAPIBase+"?"+params.Encode(), cfg.UserAgent, nil)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}

	var oar openAlexResponse
	if err := json.Unmarshal(body, &oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	var records []types.PaperRecord
	for _, work := range oar.Results {
		r := types.PaperRecord{
			Title:          work.Title,
			Venue:          work.PrimaryLocation.Source.DisplayName,
			Year:           work.PublicationYear,
			Abstract:       reconstructAbstract(work.AbstractInvertedIndex),
			Source:         types.ProviderOpenAlex,
			CitationImpact: work.CitedByCount,
		}

		for _, authorship := range work.Authorships {
			if authorship.Author.DisplayName != "" {
				r.Authors = append(r.Authors, authorship.Author.DisplayName)
			}
		}

		switch {
		case work.PrimaryLocation.LandingPageURL != "":
			r.URL = work.PrimaryLocation.LandingPageURL
		case work.DOI != "":
			r.URL = work.DOI
		default:
			r.URL = work.ID
		}

		records = append(records, r)
	}
	return records, nil
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where
// that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string             `json:"id"`
	Title                 string             `json:"title"`
	DOI                   string             `json:"doi"`
	PublicationYear       int                `json:"publication_year"`
	CitedByCount          int                `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int   `json:"abstract_inverted_index"`
	PrimaryLocation       openAlexLocation   `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	LandingPageURL string         `json:"landing_page_url"`
	Source         openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}
