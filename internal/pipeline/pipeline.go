// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the stages into the two query flows: the
// mental-health pipeline (crisis gate, relevance ranking, synthesis)
// and the academic pipeline (quality ranking, larger pages, show-more).
// Both run the same sequence — cache check, normalization, provider
// fan-out, merge, rank, synthesis — differing only in parameters.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mhprogram/evidence-engine/internal/aggregate"
	"github.com/mhprogram/evidence-engine/internal/cache"
	"github.com/mhprogram/evidence-engine/internal/crisis"
	"github.com/mhprogram/evidence-engine/internal/provider"
	"github.com/mhprogram/evidence-engine/internal/query"
	"github.com/mhprogram/evidence-engine/internal/rank"
	"github.com/mhprogram/evidence-engine/internal/synthesis"
	"github.com/mhprogram/evidence-engine/pkg/types"
)

// ErrCancelled reports that the caller's context was cancelled while the
// query was in flight. Partial results are discarded, never returned.
var ErrCancelled = errors.New("query cancelled")

// NoResultsMessage is returned when every provider comes back empty.
const NoResultsMessage = "No relevant papers were found for your question. " +
	"Try rephrasing it with more specific terms."

const (
	defaultPageSize     = 8
	defaultMorePageSize = 40
	defaultTopPapers    = 5
)

// Pipeline runs one end-to-end query flow. Build one with
// NewMentalHealth or NewAcademic; the zero value is not usable.
type Pipeline struct {
	name       string
	cfg        types.PipelineConfig
	normalizer query.Normalizer
	crisis     *crisis.Filter // nil disables the crisis gate
	providers  []provider.Provider
	scorer     rank.Scorer
	store      cache.Store
	synth      synthesis.Synthesizer // nil disables synthesis
	log        *zap.Logger

	// Now is the clock used for recency scoring; tests override it.
	Now func() time.Time
}

// NewMentalHealth builds the mental-health pipeline: crisis gate on,
// relevance ranking, small pages, synthesized answers.
func NewMentalHealth(cfg types.PipelineConfig, store cache.Store, synth synthesis.Synthesizer, log *zap.Logger) *Pipeline {
	if cfg.Rank.PageSize <= 0 {
		cfg.Rank.PageSize = defaultPageSize
	}
	p := newPipeline("mental-health", cfg, store, synth, log)
	p.crisis = buildCrisisFilter(cfg.ResourcesFile, log)
	p.scorer = rank.RelevanceScorer{}
	return p
}

// NewAcademic builds the academic pipeline: no crisis gate, quality
// ranking, a 20-paper page expandable to 40 via More.
func NewAcademic(cfg types.PipelineConfig, store cache.Store, synth synthesis.Synthesizer, log *zap.Logger) *Pipeline {
	if cfg.Rank.PageSize <= 0 {
		cfg.Rank.PageSize = 20
	}
	if cfg.Rank.MorePageSize <= 0 {
		cfg.Rank.MorePageSize = defaultMorePageSize
	}
	p := newPipeline("academic", cfg, store, synth, log)
	p.scorer = rank.QualityScorer{}
	return p
}

func newPipeline(name string, cfg types.PipelineConfig, store cache.Store, synth synthesis.Synthesizer, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if store == nil {
		store = cache.NewMemory()
	}
	client := &http.Client{Timeout: cfg.Search.Timeout}

	var providers []provider.Provider
	for _, p := range provider.BuildAll(cfg.Search, client) {
		providers = append(providers, provider.Guard(p, log))
	}

	return &Pipeline{
		name:       name,
		cfg:        cfg,
		normalizer: query.Normalizer{MaxVariants: cfg.Search.MaxVariants},
		providers:  providers,
		store:      store,
		synth:      synth,
		log:        log.Named(name),
		Now:        time.Now,
	}
}

func buildCrisisFilter(resourcesFile string, log *zap.Logger) *crisis.Filter {
	if resourcesFile == "" {
		return crisis.NewFilter()
	}
	resources, err := crisis.LoadResources(resourcesFile)
	if err != nil {
		if log != nil {
			log.Warn("loading crisis resources, using built-in list",
				zap.String("path", resourcesFile), zap.Error(err))
		}
		return crisis.NewFilter()
	}
	return crisis.NewFilterWithResources(resources)
}

// Name reports which flow this pipeline runs ("mental-health" or
// "academic").
func (p *Pipeline) Name() string { return p.name }

// Providers exposes the configured adapters, primarily for tests.
func (p *Pipeline) Providers() []provider.Provider { return p.providers }

// SetProviders replaces the adapters, wrapping each in the failure guard.
func (p *Pipeline) SetProviders(providers []provider.Provider) {
	p.providers = nil
	for _, pr := range providers {
		p.providers = append(p.providers, provider.Guard(pr, p.log))
	}
}

// Run answers one question end to end. The stages run in a fixed order:
// crisis gate, response cache, normalization, provider fan-out, merge,
// rank, synthesis. Every answer is cached before it is returned.
func (p *Pipeline) Run(ctx context.Context, question string) (types.QueryResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return types.QueryResponse{}, fmt.Errorf("question is empty")
	}

	log := p.log.With(zap.String("request_id", uuid.NewString()))

	// The crisis gate runs before anything else: no provider or model
	// ever sees text that tripped it.
	if p.crisis != nil {
		if a := p.crisis.Assess(question); a.Detected {
			log.Info("crisis language detected", zap.Strings("terms", a.MatchedTerms))
			return types.QueryResponse{
				ResponseText:    a.Message,
				Papers:          []types.ScoredPaper{},
				CrisisDetected:  true,
				CrisisResources: a.Resources,
			}, nil
		}
	}

	key := p.cacheKey(question)
	if raw, ok := p.store.Get(ctx, "response:"+key); ok {
		var resp types.QueryResponse
		if err := json.Unmarshal([]byte(raw), &resp); err == nil {
			log.Debug("cache hit", zap.String("key", key))
			resp.Cached = true
			return resp, nil
		}
		log.Warn("discarding undecodable cache entry", zap.String("key", key))
	}

	q := p.normalizer.Normalize(question)
	log.Debug("normalized question",
		zap.Strings("keywords", q.Keywords),
		zap.String("category", string(q.Category)),
		zap.Int("variants", len(q.Variants)))

	batches := aggregate.FanOut(ctx, p.providers, q.Variants, p.cfg.Search, log)
	if err := ctx.Err(); err != nil {
		return types.QueryResponse{}, fmt.Errorf("%w: %v", ErrCancelled, err)
	}

	merged := aggregate.Merge(batches)
	if len(merged) == 0 {
		log.Info("no results from any provider")
		return types.QueryResponse{
			ResponseText: NoResultsMessage,
			Papers:       []types.ScoredPaper{},
			SearchTerms:  q.Keywords,
		}, nil
	}

	scored := rank.Rank(merged, q, p.scorer, p.Now())
	p.setJSON(ctx, "pool:"+key, scored)

	page, hasMore := rank.Page(scored, p.cfg.Rank.PageSize)

	resp := types.QueryResponse{
		Papers:      page,
		SearchTerms: q.Keywords,
		HasMore:     hasMore,
	}
	text, syn, err := p.answer(ctx, question, page, log)
	if err != nil {
		return types.QueryResponse{}, fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	resp.ResponseText, resp.Synthesis = text, syn

	p.setJSON(ctx, "response:"+key, resp)
	log.Info("query answered",
		zap.Int("papers", len(page)),
		zap.Bool("has_more", hasMore),
		zap.Bool("synthesized", resp.Synthesis != nil))
	return resp, nil
}

// More expands a previous answer to the larger page size by re-slicing
// the cached candidate pool. It never re-runs the provider fan-out; a
// cold pool falls back to a fresh Run.
func (p *Pipeline) More(ctx context.Context, question string) (types.QueryResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return types.QueryResponse{}, fmt.Errorf("question is empty")
	}

	key := p.cacheKey(question)
	raw, ok := p.store.Get(ctx, "pool:"+key)
	if !ok {
		return p.Run(ctx, question)
	}

	var pool []types.ScoredPaper
	if err := json.Unmarshal([]byte(raw), &pool); err != nil {
		return types.QueryResponse{}, fmt.Errorf("decoding cached candidate pool: %w", err)
	}

	n := p.cfg.Rank.MorePageSize
	if n <= 0 {
		n = defaultMorePageSize
	}
	page, hasMore := rank.Page(pool, n)

	resp := types.QueryResponse{
		Papers:  page,
		HasMore: hasMore,
		Cached:  true,
	}
	if prev, ok := p.store.Get(ctx, "response:"+key); ok {
		var cached types.QueryResponse
		if err := json.Unmarshal([]byte(prev), &cached); err == nil {
			resp.ResponseText = cached.ResponseText
			resp.Synthesis = cached.Synthesis
			resp.SearchTerms = cached.SearchTerms
		}
	}
	if resp.ResponseText == "" {
		resp.ResponseText = fallbackAnswer(page)
	}
	return resp, nil
}

// answer produces the narrative text for a page of papers, preferring
// the synthesis collaborator and degrading to a formatted citation list
// when synthesis is disabled or fails. A context error is returned, not
// degraded, so a cancelled query never caches a synthesis-less answer.
func (p *Pipeline) answer(ctx context.Context, question string, page []types.ScoredPaper, log *zap.Logger) (string, *types.Synthesis, error) {
	if p.synth == nil {
		return fallbackAnswer(page), nil, nil
	}

	top := p.cfg.Synthesis.TopPapers
	if top <= 0 {
		top = defaultTopPapers
	}
	if top > len(page) {
		top = len(page)
	}

	syn, err := p.synth.Synthesize(ctx, question, page[:top])
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return "", nil, cerr
		}
		log.Warn("synthesis failed, returning citation list", zap.Error(err))
		return fallbackAnswer(page), nil, nil
	}
	if syn.ParseFailed {
		return syn.Raw, &syn, nil
	}
	return syn.ExecutiveSummary, &syn, nil
}

func fallbackAnswer(page []types.ScoredPaper) string {
	if len(page) == 0 {
		return NoResultsMessage
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant papers:\n", len(page))
	for i, sp := range page {
		fmt.Fprintf(&b, "%d. %s\n", i+1, synthesis.Citation(sp.PaperRecord))
	}
	return strings.TrimRight(b.String(), "\n")
}

// cacheKey derives the cache key from the pipeline name and the
// normalized question text, so trivial punctuation or casing changes
// still hit the same entry.
func (p *Pipeline) cacheKey(question string) string {
	return p.name + ":" + types.NormalizeText(question)
}

func (p *Pipeline) setJSON(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		p.log.Warn("encoding cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	ttl := p.cfg.Cache.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	p.store.Set(ctx, key, string(payload), ttl)
}
