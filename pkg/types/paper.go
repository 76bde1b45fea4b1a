// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the evidence-engine pipeline.
package types

import (
	"strconv"
	"strings"
	"unicode"
)

// Provider identifies which literature API produced a record.
type Provider string

const (
	ProviderPubMed          Provider = "pubmed"
	ProviderCrossref        Provider = "crossref"
	ProviderOpenAlex        Provider = "openalex"
	ProviderArxiv           Provider = "arxiv"
	ProviderSemanticScholar Provider = "semanticscholar"
)

// StudyType is a coarse classification of study design rigor.
type StudyType string

const (
	// StudyUnknown is the zero value, used when the provider reports
	// no study design.
	StudyUnknown StudyType = ""

	StudyMetaAnalysis     StudyType = "meta-analysis"
	StudySystematicReview StudyType = "systematic-review"
	StudyRCT              StudyType = "rct"
	StudyCohort           StudyType = "cohort"
	StudyCaseControl      StudyType = "case-control"
	StudyCrossSectional   StudyType = "cross-sectional"
	StudyCaseStudy        StudyType = "case-study"
)

// PaperRecord is one literature result, normalized across providers.
// Providers share no common identifier space, so record identity is the
// normalized (title, first author, year) tuple returned by IdentityKey.
type PaperRecord struct {
	// Title is the paper title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in provider order.
	Authors []string `json:"authors" yaml:"authors"`

	// Venue is the journal or venue name ("arXiv" for preprints).
	Venue string `json:"venue" yaml:"venue"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year" yaml:"year"`

	// URL points at the provider's landing page for the paper.
	URL string `json:"url" yaml:"url"`

	// Abstract is the paper abstract, possibly empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Source identifies the provider that returned this record.
	Source Provider `json:"source" yaml:"source"`

	// CitationImpact is a citation-count-derived impact value, 0 if unknown.
	CitationImpact int `json:"citation_impact,omitempty" yaml:"citation_impact,omitempty"`

	// StudyType is the study design when the provider reports one.
	StudyType StudyType `json:"study_type,omitempty" yaml:"study_type,omitempty"`

	// SampleSize is the reported participant count, 0 if unknown.
	SampleSize int `json:"sample_size,omitempty" yaml:"sample_size,omitempty"`
}

// IdentityKey returns the dedup key for this record: normalized title,
// normalized family name of the first author, and year. Venue is left out
// of the key because providers disagree on venue naming far more often
// than two distinct papers share a title, first author, and year.
func (p PaperRecord) IdentityKey() string {
	var b strings.Builder
	b.WriteString(NormalizeText(p.Title))
	b.WriteByte('|')
	if len(p.Authors) > 0 {
		name := strings.TrimSpace(p.Authors[0])
		if idx := strings.LastIndex(name, " "); idx >= 0 {
			name = name[idx+1:]
		}
		b.WriteString(NormalizeText(name))
	}
	b.WriteByte('|')
	if p.Year > 0 {
		b.WriteString(strconv.Itoa(p.Year))
	}
	return b.String()
}

// NormalizeText lowercases s and strips everything except letters, digits
// and spaces, collapsing runs of whitespace to single spaces.
func NormalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ScoredPaper is a PaperRecord with a score attached by one of the
// ranking strategies. Derived during ranking, never persisted.
type ScoredPaper struct {
	PaperRecord `yaml:",inline"`

	// RelevanceScore is the overall score under the active scoring strategy.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// ScoreBreakdown maps sub-score names (e.g. "keywords", "recency",
	// "study_type") to their contributions, for explainability.
	ScoreBreakdown map[string]float64 `json:"score_breakdown,omitempty" yaml:"score_breakdown,omitempty"`
}
