// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query turns a free-text user question into a normalized
// SearchQuery: canonical keywords, a coarse topic category, and a bounded
// set of provider query variants.
package query

import (
	"strings"
	"unicode"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// clinicalMappings maps colloquial phrasing to clinical/academic vocabulary.
// Keys are matched as substrings of the cleaned question; mapped terms are
// added to the keyword set, not substituted, so both phrasings stay
// searchable.
var clinicalMappings = []struct{ phrase, term string }{
	{"racing thoughts", "insomnia"},
	{"can't sleep", "insomnia"},
	{"cant sleep", "insomnia"},
	{"can't concentrate", "attention deficit"},
	{"feeling low", "depression"},
	{"feel really low", "depression"},
	{"worry", "anxiety"},
	{"worried", "anxiety"},
	{"sad", "depression"},
	{"point in life", "existential crisis"},
	{"happy", "wellbeing"},
}

// categoryRules is the ordered first-match-wins topic classification table.
var categoryRules = []struct {
	category types.TopicCategory
	terms    []string
}{
	{types.TopicSleep, []string{"sleep", "insomnia", "racing thoughts"}},
	{types.TopicAnxiety, []string{"anxiety", "worry", "panic"}},
	{types.TopicDepression, []string{"depression", "low", "hopeless"}},
	{types.TopicConcentration, []string{"concentrate", "attention", "focus"}},
	{types.TopicExistential, []string{"point in life", "meaning", "purpose"}},
	{types.TopicWellbeing, []string{"happy", "wellbeing", "lifestyle"}},
}

// evidenceQualifiers augment the base query to bias providers toward
// higher-tier evidence. Variants are capped to bound fan-out cost.
var evidenceQualifiers = []string{
	"systematic review OR meta-analysis",
	"randomized controlled trial",
	"longitudinal study",
}

// stopwords are function words skipped during keyword extraction.
var stopwords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true, "with": true,
	"for": true, "from": true, "have": true, "has": true, "had": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"how": true, "why": true, "does": true, "can": true, "cant": true,
	"could": true, "would": true, "should": true, "about": true,
	"been": true, "being": true, "into": true, "over": true, "very": true,
	"feel": true, "feeling": true, "felt": true, "keep": true,
	"always": true, "really": true, "every": true, "everything": true,
	"anything": true, "something": true, "stop": true, "still": true,
	"just": true, "like": true, "want": true, "need": true, "help": true,
	"best": true, "make": true, "makes": true, "more": true, "much": true,
	"some": true, "them": true, "they": true, "there": true, "their": true,
}

// Normalizer builds SearchQuery values. MaxVariants bounds the number of
// provider query variants (base query included); zero selects the default.
type Normalizer struct {
	MaxVariants int
}

const defaultMaxVariants = 3

// Normalize lowercases and trims rawText, extracts keywords, adds clinical
// terms for colloquial phrasing, classifies the topic, and builds the query
// variants. It never fails: when extraction yields nothing the raw text
// itself becomes the sole keyword.
func (n Normalizer) Normalize(rawText string) types.SearchQuery {
	cleaned := strings.ToLower(strings.TrimSpace(rawText))

	keywords := extractKeywords(cleaned)
	if len(keywords) == 0 && cleaned != "" {
		keywords = []string{cleaned}
	}

	// Append clinical terms for colloquial phrases found in the question.
	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		seen[k] = true
	}
	for _, m := range clinicalMappings {
		if strings.Contains(cleaned, m.phrase) && !seen[m.term] {
			keywords = append(keywords, m.term)
			seen[m.term] = true
		}
	}

	return types.SearchQuery{
		RawText:  rawText,
		Keywords: keywords,
		Category: classify(cleaned),
		Variants: buildVariants(keywords, n.maxVariants()),
	}
}

func (n Normalizer) maxVariants() int {
	if n.MaxVariants <= 0 {
		return defaultMaxVariants
	}
	return n.MaxVariants
}

// extractKeywords tokenizes the cleaned question and keeps deduplicated
// non-stopword tokens longer than 3 characters, in order of appearance.
func extractKeywords(cleaned string) []string {
	tokens := strings.FieldsFunc(cleaned, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var keywords []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if len(tok) <= 3 || stopwords[tok] || seen[tok] {
			continue
		}
		keywords = append(keywords, tok)
		seen[tok] = true
	}
	return keywords
}

// classify returns the first matching category, TopicGeneral otherwise.
func classify(cleaned string) types.TopicCategory {
	for _, rule := range categoryRules {
		for _, term := range rule.terms {
			if strings.Contains(cleaned, term) {
				return rule.category
			}
		}
	}
	return types.TopicGeneral
}

// buildVariants returns the base joined-keyword query plus evidence-qualified
// augmentations, capped at maxVariants total.
func buildVariants(keywords []string, maxVariants int) []string {
	if len(keywords) == 0 {
		return nil
	}

	base := strings.Join(keywords, " ")
	variants := []string{base}
	for _, q := range evidenceQualifiers {
		if len(variants) >= maxVariants {
			break
		}
		variants = append(variants, base+" "+q)
	}
	return variants
}
