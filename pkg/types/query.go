// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TopicCategory is a coarse topic classification for a user question.
type TopicCategory string

const (
	TopicSleep         TopicCategory = "sleep"
	TopicAnxiety       TopicCategory = "anxiety"
	TopicDepression    TopicCategory = "depression"
	TopicConcentration TopicCategory = "concentration"
	TopicExistential   TopicCategory = "existential"
	TopicWellbeing     TopicCategory = "wellbeing"
	TopicGeneral       TopicCategory = "general"
)

// SearchQuery is the normalized form of a free-text user question.
// Construct it with query.Normalize; treat it as immutable afterwards.
type SearchQuery struct {
	// RawText is the original question as typed by the user.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// Keywords are the deduplicated search terms in extraction order,
	// including clinical terms mapped from colloquial phrasing.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Category is the first-match topic classification, TopicGeneral
	// when no rule matches.
	Category TopicCategory `json:"category" yaml:"category"`

	// Variants are the query strings actually sent to providers: the
	// base joined-keyword string plus evidence-qualified augmentations.
	Variants []string `json:"variants" yaml:"variants"`
}
