// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Synthesis is the structured answer produced by the synthesis collaborator.
// Citations reference only supplied papers; the caller filters out anything
// the model invented.
type Synthesis struct {
	// ExecutiveSummary is the narrative answer to the question.
	ExecutiveSummary string `json:"executive_summary" yaml:"executive_summary"`

	// KeyFindings lists evidence-backed findings extracted from the papers.
	KeyFindings []string `json:"key_findings,omitempty" yaml:"key_findings,omitempty"`

	// Recommendations lists practical, actionable advice.
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`

	// Citations lists the titles of the supplied papers the answer relies on.
	Citations []string `json:"citations,omitempty" yaml:"citations,omitempty"`

	// Warnings flags missing data (effect sizes, sample sizes) in the sources.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Raw holds the unparsed model output when ParseFailed is set.
	Raw string `json:"raw,omitempty" yaml:"raw,omitempty"`

	// ParseFailed is set when the model output was not valid JSON; Raw then
	// carries the degraded plain-text answer.
	ParseFailed bool `json:"parse_failed,omitempty" yaml:"parse_failed,omitempty"`
}

// QueryResponse is what the pipeline returns to its caller for one question.
type QueryResponse struct {
	// ResponseText is the narrative answer, or the supportive message when
	// crisis language was detected, or a "no results" notice.
	ResponseText string `json:"response" yaml:"response"`

	// Synthesis is the full structured answer when synthesis ran.
	Synthesis *Synthesis `json:"synthesis,omitempty" yaml:"synthesis,omitempty"`

	// Papers are the ranked results backing the answer, empty on crisis.
	Papers []ScoredPaper `json:"papers" yaml:"papers"`

	// SearchTerms are the keywords the providers were queried with.
	SearchTerms []string `json:"search_terms_used,omitempty" yaml:"search_terms_used,omitempty"`

	// CrisisDetected reports whether the crisis filter short-circuited
	// the pipeline.
	CrisisDetected bool `json:"crisis_detected" yaml:"crisis_detected"`

	// CrisisResources is non-empty iff CrisisDetected is set.
	CrisisResources []CrisisResource `json:"crisis_resources,omitempty" yaml:"crisis_resources,omitempty"`

	// HasMore reports whether the cached candidate pool holds more papers
	// than the returned page.
	HasMore bool `json:"has_more,omitempty" yaml:"has_more,omitempty"`

	// Cached reports whether the response was served from the response cache.
	Cached bool `json:"cached,omitempty" yaml:"cached,omitempty"`
}
