// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis calls the external LLM collaborator that turns the
// top-ranked papers into a structured answer. The contract is narrow:
// question plus papers in, structured JSON out, and any citation the
// model invents is filtered against the supplied papers before the
// answer leaves this package.
package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mhprogram/evidence-engine/internal/httputil"
	"github.com/mhprogram/evidence-engine/pkg/types"
)

// Synthesizer produces a structured answer from the question and the
// top-K ranked papers.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, papers []types.ScoredPaper) (types.Synthesis, error)
}

// openAIAPIBase is the chat completions endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAIAPIBase = "https://api.openai.com/v1/chat/completions"

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 1200
)

// OpenAI is a Synthesizer backed by an OpenAI-compatible chat API.
type OpenAI struct {
	Client *http.Client
	Config types.SynthesisConfig
}

// Synthesize sends the question and papers to the model and parses the
// structured reply. A reply that is not valid JSON degrades to a
// Synthesis with Raw set and ParseFailed true, not an error; only the
// call itself failing returns an error.
func (o *OpenAI) Synthesize(ctx context.Context, question string, papers []types.ScoredPaper) (types.Synthesis, error) {
	model := o.Config.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := o.Config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(question, papers)},
		},
		MaxTokens:      maxTokens,
		Temperature:    0.1,
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return types.Synthesis{}, fmt.Errorf("encoding synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIAPIBase, bytes.NewReader(payload))
	if err != nil {
		return types.Synthesis{}, fmt.Errorf("creating synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.Config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.Config.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, o.Client, req, 2)
	if err != nil {
		return types.Synthesis{}, fmt.Errorf("synthesis API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.Synthesis{}, fmt.Errorf("synthesis API returned HTTP %d: %s", resp.StatusCode, body)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.Synthesis{}, fmt.Errorf("parsing synthesis API response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return types.Synthesis{}, fmt.Errorf("synthesis API returned no choices")
	}

	return Parse(cr.Choices[0].Message.Content, papers), nil
}

// Parse interprets the model's reply. Valid JSON yields a structured
// Synthesis with its citations filtered to supplied papers; anything
// else yields the raw text with ParseFailed set.
func Parse(content string, papers []types.ScoredPaper) types.Synthesis {
	var reply struct {
		ExecutiveSummary string   `json:"executive_summary"`
		KeyFindings      []string `json:"key_findings"`
		Recommendations  []string `json:"recommendations"`
		Citations        []string `json:"citations"`
		Warnings         []string `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(content), &reply); err != nil || reply.ExecutiveSummary == "" {
		return types.Synthesis{Raw: content, ParseFailed: true}
	}

	return types.Synthesis{
		ExecutiveSummary: reply.ExecutiveSummary,
		KeyFindings:      reply.KeyFindings,
		Recommendations:  reply.Recommendations,
		Citations:        filterCitations(reply.Citations, papers),
		Warnings:         reply.Warnings,
	}
}

// filterCitations keeps only citations that reference a supplied paper,
// matched on normalized title containment in either direction. The model
// must not introduce sources of its own.
func filterCitations(citations []string, papers []types.ScoredPaper) []string {
	var kept []string
	for _, c := range citations {
		normalized := types.NormalizeText(c)
		if normalized == "" {
			continue
		}
		for _, p := range papers {
			title := types.NormalizeText(p.Title)
			if title == "" {
				continue
			}
			if normalized == title ||
				len(title) > 10 && (strings.Contains(normalized, title) || strings.Contains(title, normalized)) {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

// OpenAI chat API JSON structures.
type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	MaxTokens      int                 `json:"max_tokens"`
	Temperature    float64             `json:"temperature"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}
