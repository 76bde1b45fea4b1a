// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package answerfile persists a question and its answer to a YAML file,
// so a session's results can be reviewed later without re-running the
// provider fan-out or paying for another synthesis call.
package answerfile

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// AnswerFile is the on-disk representation of one answered question.
type AnswerFile struct {
	Question string              `yaml:"question"`
	Pipeline string              `yaml:"pipeline"`
	Answer   Answer              `yaml:"answer"`
	Papers   []types.ScoredPaper `yaml:"papers,omitempty"`
	Summary  AnswerSummary       `yaml:"summary"`
}

// Answer stores the narrative and, when synthesis ran, the structured
// breakdown behind it.
type Answer struct {
	Text      string           `yaml:"text"`
	Synthesis *types.Synthesis `yaml:"synthesis,omitempty"`
}

// AnswerSummary stores result statistics and a timestamp.
type AnswerSummary struct {
	Total       int       `yaml:"total"`
	HasMore     bool      `yaml:"has_more"`
	SearchTerms []string  `yaml:"search_terms,omitempty"`
	Cached      bool      `yaml:"cached"`
	Timestamp   time.Time `yaml:"timestamp"`
}

// Write saves a pipeline response to a YAML file.
func Write(path, pipelineName, question string, resp types.QueryResponse) error {
	af := AnswerFile{
		Question: question,
		Pipeline: pipelineName,
		Answer: Answer{
			Text:      resp.ResponseText,
			Synthesis: resp.Synthesis,
		},
		Papers: resp.Papers,
		Summary: AnswerSummary{
			Total:       len(resp.Papers),
			HasMore:     resp.HasMore,
			SearchTerms: resp.SearchTerms,
			Cached:      resp.Cached,
			Timestamp:   time.Now(),
		},
	}

	data, err := yaml.Marshal(&af)
	if err != nil {
		return fmt.Errorf("marshaling answer file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads a previously saved answer file from disk.
func Read(path string) (*AnswerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading answer file: %w", err)
	}
	var af AnswerFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("parsing answer file: %w", err)
	}
	if af.Question == "" {
		return nil, fmt.Errorf("answer file %s has no question", path)
	}
	return &af, nil
}
