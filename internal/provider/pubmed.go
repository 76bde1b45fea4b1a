// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// PubMed E-utilities endpoints. Declared as vars so tests can substitute
// httptest servers.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// PubMed queries the NCBI E-utilities: esearch for PMIDs, then efetch for
// article metadata and abstracts. Both calls go through the same limiter,
// so the adapter stays inside NCBI's ~3 requests/second quota.
type PubMed struct {
	Client  *http.Client
	Limiter *Limiter
	APIKey  string
}

// Name returns the provider identifier.
func (p *PubMed) Name() types.Provider { return types.ProviderPubMed }

// Search queries PubMed for one query variant.
func (p *PubMed) Search(ctx context.Context, variant string, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(variant) == "" {
		return nil, fmt.Errorf("empty PubMed query")
	}

	ids, err := p.searchIDs(ctx, variant, cfg)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return p.fetchArticles(ctx, ids, cfg)
}

func (p *PubMed) searchIDs(ctx context.Context, variant string, cfg types.SearchConfig) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {variant},
		"retmax":  {fmt.Sprintf("%d", maxResults(cfg.MaxResults, 50))},
		"retmode": {"json"},
		"sort":    {"pub date"},
	}
	if p.APIKey != "" {
		params.Set("api_key", p.APIKey)
	}

	body, err := fetch(ctx, p.Client, p.Limiter, pubmedSearchBase+"?"+params.Encode(), cfg.UserAgent, nil)
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch request: %w", err)
	}

	var sr pubmedSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing PubMed esearch response: %w", err)
	}
	return sr.Result.IDList, nil
}

func (p *PubMed) fetchArticles(ctx context.Context, ids []string, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	if p.APIKey != "" {
		params.Set("api_key", p.APIKey)
	}

	body, err := fetch(ctx, p.Client, p.Limiter, pubmedFetchBase+"?"+params.Encode(), cfg.UserAgent, nil)
	if err != nil {
		return nil, fmt.Errorf("PubMed efetch request: %w", err)
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parsing PubMed efetch response: %w", err)
	}

	var records []types.PaperRecord
	for _, article := range set.Articles {
		cit := article.Citation
		r := types.PaperRecord{
			Title:     cit.Article.Title,
			Venue:     cit.Article.JournalTitle,
			URL:       "https://pubmed.ncbi.nlm.nih.gov/" + cit.PMID + "/",
			Abstract:  strings.TrimSpace(strings.Join(cit.Article.AbstractText, " ")),
			Source:    types.ProviderPubMed,
			StudyType: studyTypeFromPublicationTypes(cit.Article.PublicationTypes),
		}

		for _, au := range cit.Article.Authors {
			name := strings.TrimSpace(au.ForeName + " " + au.LastName)
			if name != "" {
				r.Authors = append(r.Authors, name)
			}
		}

		if y, convErr := strconv.Atoi(cit.Article.PubYear); convErr == nil {
			r.Year = y
		}

		records = append(records, r)
	}
	return records, nil
}

// studyTypeFromPublicationTypes maps PubMed publication types onto the
// study design enum. PubMed is the only provider that reports this
// directly; elsewhere it stays best-effort.
func studyTypeFromPublicationTypes(pubTypes []string) types.StudyType {
	for _, pt := range pubTypes {
		switch strings.ToLower(pt) {
		case "meta-analysis":
			return types.StudyMetaAnalysis
		case "systematic review":
			return types.StudySystematicReview
		case "randomized controlled trial":
			return types.StudyRCT
		case "observational study", "cohort studies":
			return types.StudyCohort
		case "case reports":
			return types.StudyCaseStudy
		}
	}
	return types.StudyUnknown
}

// PubMed esearch JSON structures.
type pubmedSearchResponse struct {
	Result pubmedSearchResult `json:"esearchresult"`
}

type pubmedSearchResult struct {
	IDList []string `json:"idlist"`
}

// PubMed efetch XML structures.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation pubmedCitation `xml:"MedlineCitation"`
}

type pubmedCitation struct {
	PMID    string            `xml:"PMID"`
	Article pubmedArticleData `xml:"Article"`
}

type pubmedArticleData struct {
	Title            string         `xml:"ArticleTitle"`
	AbstractText     []string       `xml:"Abstract>AbstractText"`
	Authors          []pubmedAuthor `xml:"AuthorList>Author"`
	JournalTitle     string         `xml:"Journal>Title"`
	PubYear          string         `xml:"Journal>JournalIssue>PubDate>Year"`
	PublicationTypes []string       `xml:"PublicationTypeList>PublicationType"`
}

type pubmedAuthor struct {
	ForeName string `xml:"ForeName"`
	LastName string `xml:"LastName"`
}
