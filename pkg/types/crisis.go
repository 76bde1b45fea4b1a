// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CrisisResource is one support service shown when crisis language is detected.
type CrisisResource struct {
	Name        string `json:"name" yaml:"name"`
	Phone       string `json:"phone" yaml:"phone"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description" yaml:"description"`
}

// CrisisAssessment is the result of scanning a question for crisis language.
// When Detected is true the pipeline must return the supportive message and
// resources without calling any provider, the synthesizer, or the cache.
type CrisisAssessment struct {
	Detected     bool             `json:"detected" yaml:"detected"`
	MatchedTerms []string         `json:"matched_terms,omitempty" yaml:"matched_terms,omitempty"`
	Message      string           `json:"message,omitempty" yaml:"message,omitempty"`
	Resources    []CrisisResource `json:"resources,omitempty" yaml:"resources,omitempty"`
}
