// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crisis detects self-harm language and supplies support resources.
// It is the first gate in the pipeline: when a phrase matches, the caller
// must return the supportive message and resource list without touching
// providers, the synthesizer, or the cache. That is a product safety
// requirement, never bypassed by caching or retries.
package crisis

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// phrases are matched case-insensitively as substrings of the raw question.
var phrases = []string{
	"suicide",
	"kill myself",
	"end my life",
	"self-harm",
	"cut myself",
	"hopeless",
	"can't go on",
}

// Message is the fixed supportive response shown on detection.
const Message = "We detected words indicating distress. Please consider reaching out " +
	"to a crisis helpline or mental health professional."

// defaultResources is the built-in support list, overridable via LoadResources.
var defaultResources = []types.CrisisResource{
	{
		Name:        "Samaritans (UK)",
		Phone:       "116 123",
		URL:         "https://www.samaritans.org/",
		Description: "24/7 emotional support for anyone in distress.",
	},
	{
		Name:        "National Suicide Prevention Lifeline (US)",
		Phone:       "988",
		URL:         "https://988lifeline.org/",
		Description: "24/7 free and confidential support for people in distress.",
	},
	{
		Name:        "Crisis Text Line",
		Phone:       "Text HOME to 741741",
		URL:         "https://www.crisistextline.org/",
		Description: "24/7 support via text for those in crisis.",
	},
}

// Filter assesses questions against the crisis phrase list.
type Filter struct {
	resources []types.CrisisResource
}

// NewFilter returns a Filter using the built-in resource list.
func NewFilter() *Filter {
	return &Filter{resources: defaultResources}
}

// NewFilterWithResources returns a Filter serving the given resource list.
// An empty list falls back to the built-in one so detection never ships
// without at least one hotline.
func NewFilterWithResources(resources []types.CrisisResource) *Filter {
	if len(resources) == 0 {
		resources = defaultResources
	}
	return &Filter{resources: resources}
}

// Assess scans rawText for crisis phrases. MatchedTerms lists every phrase
// that matched, not just the first.
func (f *Filter) Assess(rawText string) types.CrisisAssessment {
	lowered := strings.ToLower(rawText)

	var matched []string
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			matched = append(matched, p)
		}
	}

	if len(matched) == 0 {
		return types.CrisisAssessment{}
	}

	return types.CrisisAssessment{
		Detected:     true,
		MatchedTerms: matched,
		Message:      Message,
		Resources:    f.resources,
	}
}

// Resources returns the filter's support list, for display outside the
// detection path.
func (f *Filter) Resources() []types.CrisisResource {
	return f.resources
}

// LoadResources reads a YAML list of crisis resources from path. Entries
// missing a name or phone are rejected so a bad override cannot blank out
// the hotline list.
func LoadResources(path string) ([]types.CrisisResource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resources file %s: %w", path, err)
	}

	var resources []types.CrisisResource
	if err := yaml.Unmarshal(data, &resources); err != nil {
		return nil, fmt.Errorf("parsing resources file %s: %w", path, err)
	}

	for i, r := range resources {
		if r.Name == "" || r.Phone == "" {
			return nil, fmt.Errorf("resource %d in %s is missing a name or phone", i, path)
		}
	}
	return resources, nil
}
