// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhprogram/evidence-engine/internal/cache"
	"github.com/mhprogram/evidence-engine/internal/provider"
	"github.com/mhprogram/evidence-engine/pkg/types"
)

type stubProvider struct {
	name   types.Provider
	papers []types.PaperRecord
	calls  atomic.Int32
}

func (s *stubProvider) Name() types.Provider { return s.name }

func (s *stubProvider) Search(ctx context.Context, _ string, _ types.SearchConfig) ([]types.PaperRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.calls.Add(1)
	return s.papers, nil
}

type stubSynth struct {
	syn   types.Synthesis
	err   error
	calls atomic.Int32
}

func (s *stubSynth) Synthesize(_ context.Context, _ string, _ []types.ScoredPaper) (types.Synthesis, error) {
	s.calls.Add(1)
	return s.syn, s.err
}

// cancellingSynth cancels the query context from inside the synthesis
// call, the way a user interrupt lands mid-request.
type cancellingSynth struct {
	cancel context.CancelFunc
}

func (s *cancellingSynth) Synthesize(ctx context.Context, _ string, _ []types.ScoredPaper) (types.Synthesis, error) {
	s.cancel()
	return types.Synthesis{}, ctx.Err()
}

func makePapers(n int) []types.PaperRecord {
	papers := make([]types.PaperRecord, n)
	for i := range papers {
		papers[i] = types.PaperRecord{
			Title:   fmt.Sprintf("Sleep Study %d", i),
			Authors: []string{fmt.Sprintf("Author Number%d", i)},
			Year:    2010 + i%15,
			Source:  types.ProviderPubMed,
		}
	}
	return papers
}

func mentalHealthPipeline(papers []types.PaperRecord, synth *stubSynth) (*Pipeline, *stubProvider) {
	stub := &stubProvider{name: types.ProviderPubMed, papers: papers}
	p := NewMentalHealth(types.PipelineConfig{}, cache.NewMemory(), nil, nil)
	if synth != nil {
		p.synth = synth
	}
	p.SetProviders([]provider.Provider{stub})
	return p, stub
}

func academicPipeline(papers []types.PaperRecord) (*Pipeline, *stubProvider) {
	stub := &stubProvider{name: types.ProviderCrossref, papers: papers}
	p := NewAcademic(types.PipelineConfig{}, cache.NewMemory(), nil, nil)
	p.SetProviders([]provider.Provider{stub})
	return p, stub
}

func TestRunCrisisShortCircuits(t *testing.T) {
	synth := &stubSynth{syn: types.Synthesis{ExecutiveSummary: "should never appear"}}
	p, stub := mentalHealthPipeline(makePapers(5), synth)

	resp, err := p.Run(context.Background(), "I want to kill myself")
	require.NoError(t, err)

	assert.True(t, resp.CrisisDetected)
	assert.NotEmpty(t, resp.CrisisResources)
	assert.Empty(t, resp.Papers)
	assert.NotEmpty(t, resp.ResponseText)
	assert.Equal(t, int32(0), stub.calls.Load(), "providers must not run on crisis input")
	assert.Equal(t, int32(0), synth.calls.Load(), "synthesis must not run on crisis input")
}

func TestAcademicPipelineHasNoCrisisGate(t *testing.T) {
	p, stub := academicPipeline(makePapers(3))

	resp, err := p.Run(context.Background(), "suicide prevention program effectiveness")
	require.NoError(t, err)

	assert.False(t, resp.CrisisDetected)
	assert.Greater(t, stub.calls.Load(), int32(0))
}

func TestRunServesSecondQueryFromCache(t *testing.T) {
	p, stub := mentalHealthPipeline(makePapers(5), nil)

	first, err := p.Run(context.Background(), "how can I sleep better?")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	callsAfterFirst := stub.calls.Load()
	require.Greater(t, callsAfterFirst, int32(0))

	// Same question modulo punctuation and casing hits the same entry.
	second, err := p.Run(context.Background(), "How can I sleep BETTER")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ResponseText, second.ResponseText)
	assert.Equal(t, len(first.Papers), len(second.Papers))
	assert.Equal(t, callsAfterFirst, stub.calls.Load(), "cache hit must not re-run providers")
}

func TestRunEmptyResultsNotCached(t *testing.T) {
	p, stub := mentalHealthPipeline(nil, nil)

	resp, err := p.Run(context.Background(), "how can I sleep better?")
	require.NoError(t, err)
	assert.Equal(t, NoResultsMessage, resp.ResponseText)
	assert.Empty(t, resp.Papers)
	callsAfterFirst := stub.calls.Load()

	_, err = p.Run(context.Background(), "how can I sleep better?")
	require.NoError(t, err)
	assert.Greater(t, stub.calls.Load(), callsAfterFirst, "empty answers are retried, not cached")
}

func TestRunEmptyQuestion(t *testing.T) {
	p, _ := mentalHealthPipeline(nil, nil)
	_, err := p.Run(context.Background(), "   ")
	assert.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	p, _ := mentalHealthPipeline(makePapers(5), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, "how can I sleep better?")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestRunCancelledDuringSynthesis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := cache.NewMemory()
	stub := &stubProvider{name: types.ProviderPubMed, papers: makePapers(5)}
	p := NewMentalHealth(types.PipelineConfig{}, store, nil, nil)
	p.synth = &cancellingSynth{cancel: cancel}
	p.SetProviders([]provider.Provider{stub})

	_, err := p.Run(ctx, "how can I sleep better?")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelled)

	// A cancelled query must not pin a synthesis-less answer.
	_, ok := store.Get(context.Background(), "response:mental-health:how can i sleep better")
	assert.False(t, ok)
}

func TestRunSynthesizedAnswer(t *testing.T) {
	synth := &stubSynth{syn: types.Synthesis{
		ExecutiveSummary: "CBT-I is well supported.",
		Citations:        []string{"Sleep Study 0"},
	}}
	p, _ := mentalHealthPipeline(makePapers(5), synth)

	resp, err := p.Run(context.Background(), "how can I sleep better?")
	require.NoError(t, err)
	assert.Equal(t, "CBT-I is well supported.", resp.ResponseText)
	require.NotNil(t, resp.Synthesis)
	assert.Equal(t, []string{"Sleep Study 0"}, resp.Synthesis.Citations)
}

func TestRunSynthesisFailureDegradesToCitationList(t *testing.T) {
	synth := &stubSynth{err: fmt.Errorf("model unavailable")}
	p, _ := mentalHealthPipeline(makePapers(3), synth)

	resp, err := p.Run(context.Background(), "how can I sleep better?")
	require.NoError(t, err, "synthesis failure must not fail the query")
	assert.Nil(t, resp.Synthesis)
	assert.Contains(t, resp.ResponseText, "Found 3 relevant papers")
	assert.Len(t, resp.Papers, 3)
}

func TestRunParseFailedSynthesisReturnsRawText(t *testing.T) {
	synth := &stubSynth{syn: types.Synthesis{Raw: "plain prose answer", ParseFailed: true}}
	p, _ := mentalHealthPipeline(makePapers(3), synth)

	resp, err := p.Run(context.Background(), "how can I sleep better?")
	require.NoError(t, err)
	assert.Equal(t, "plain prose answer", resp.ResponseText)
}

func TestRunPagesMentalHealthResults(t *testing.T) {
	p, _ := mentalHealthPipeline(makePapers(12), nil)

	resp, err := p.Run(context.Background(), "how can I sleep better?")
	require.NoError(t, err)
	assert.Len(t, resp.Papers, 8)
	assert.True(t, resp.HasMore)
}

func TestMoreExpandsPageFromCachedPool(t *testing.T) {
	p, stub := academicPipeline(makePapers(30))

	first, err := p.Run(context.Background(), "sleep deprivation and cognition")
	require.NoError(t, err)
	assert.Len(t, first.Papers, 20)
	assert.True(t, first.HasMore)
	callsAfterRun := stub.calls.Load()

	more, err := p.More(context.Background(), "sleep deprivation and cognition")
	require.NoError(t, err)
	assert.Len(t, more.Papers, 30)
	assert.False(t, more.HasMore)
	assert.Equal(t, callsAfterRun, stub.calls.Load(), "show-more re-slices the pool, never re-fetches")

	// The first page is a prefix of the expanded page.
	for i, sp := range first.Papers {
		assert.Equal(t, sp.Title, more.Papers[i].Title, "paper %d changed between pages", i)
	}
}

func TestMoreColdPoolFallsBackToRun(t *testing.T) {
	p, stub := academicPipeline(makePapers(30))

	resp, err := p.More(context.Background(), "sleep deprivation and cognition")
	require.NoError(t, err)
	assert.Len(t, resp.Papers, 20)
	assert.True(t, resp.HasMore)
	assert.Greater(t, stub.calls.Load(), int32(0))
}

func TestAcademicUsesQualityRanking(t *testing.T) {
	weak := types.PaperRecord{Title: "A Case Study of One Patient", StudyType: types.StudyCaseStudy, Year: 2024}
	strong := types.PaperRecord{Title: "A Meta-Analysis of Forty Trials", StudyType: types.StudyMetaAnalysis, Year: 2024, CitationImpact: 200, SampleSize: 5000}
	p, _ := academicPipeline([]types.PaperRecord{weak, strong})

	resp, err := p.Run(context.Background(), "treatment effectiveness evidence")
	require.NoError(t, err)
	require.Len(t, resp.Papers, 2)
	assert.Equal(t, strong.Title, resp.Papers[0].Title)
}
