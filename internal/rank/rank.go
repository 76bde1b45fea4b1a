// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores and orders aggregated papers. Two strategies exist:
// RelevanceScorer answers "how well does this paper match the question"
// for the mental-health chat, and QualityScorer answers "how strong is
// this evidence" for the academic assistant. They are separate contracts
// and must not be folded into one formula.
package rank

import (
	"sort"
	"strings"
	"time"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// Scorer assigns a score and an explainability breakdown to one paper.
type Scorer interface {
	Name() string
	Score(p types.PaperRecord, q types.SearchQuery, now time.Time) (float64, map[string]float64)
}

// Rank scores every paper and returns them sorted descending by score.
// The sort is stable: ties preserve aggregation order, so output is
// deterministic for a fixed input and a fixed now.
func Rank(papers []types.PaperRecord, q types.SearchQuery, s Scorer, now time.Time) []types.ScoredPaper {
	scored := make([]types.ScoredPaper, len(papers))
	for i, p := range papers {
		score, breakdown := s.Score(p, q, now)
		scored[i] = types.ScoredPaper{
			PaperRecord:    p,
			RelevanceScore: score,
			ScoreBreakdown: breakdown,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	return scored
}

// Page truncates a ranked pool to the first n papers and reports whether
// more remain. Pagination re-slices the same pool; it never re-runs the
// provider fan-out.
func Page(scored []types.ScoredPaper, n int) (page []types.ScoredPaper, hasMore bool) {
	if n <= 0 || n >= len(scored) {
		return scored, false
	}
	return scored[:n], true
}

// evidenceTiers is the study-design hierarchy scanned in title+abstract,
// strongest first. Only the single highest tier found counts.
var evidenceTiers = []struct {
	phrases   []string
	studyType types.StudyType
}{
	{[]string{"meta-analysis", "meta analysis"}, types.StudyMetaAnalysis},
	{[]string{"systematic review"}, types.StudySystematicReview},
	{[]string{"randomized controlled trial", "randomised controlled trial"}, types.StudyRCT},
	{[]string{"cohort"}, types.StudyCohort},
	{[]string{"case-control", "case control"}, types.StudyCaseControl},
	{[]string{"cross-sectional", "cross sectional"}, types.StudyCrossSectional},
	{[]string{"case study", "case report"}, types.StudyCaseStudy},
}

// tierIndex returns the index of the highest evidence tier mentioned in
// text, or -1 when none matches.
func tierIndex(text string) int {
	for i, tier := range evidenceTiers {
		for _, phrase := range tier.phrases {
			if strings.Contains(text, phrase) {
				return i
			}
		}
	}
	return -1
}

// RelevanceScorer implements the query-relevance formula used by the
// mental-health pipeline.
type RelevanceScorer struct{}

// Name returns the strategy identifier.
func (RelevanceScorer) Name() string { return "relevance" }

// Score sums three independent terms: keyword matches in title+abstract
// (+2 each), recency (+3/+2/+1 within 2/5/10 years), and the evidence
// tier mentioned in the text ((tiers-index)*2, highest match only).
func (RelevanceScorer) Score(p types.PaperRecord, q types.SearchQuery, now time.Time) (float64, map[string]float64) {
	text := strings.ToLower(p.Title + " " + p.Abstract)

	var keywordScore float64
	for _, kw := range q.Keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			keywordScore += 2
		}
	}

	recencyScore := relevanceRecency(p.Year, now)

	var tierScore float64
	if idx := tierIndex(text); idx >= 0 {
		tierScore = float64(len(evidenceTiers)-idx) * 2
	}

	breakdown := map[string]float64{
		"keywords":   keywordScore,
		"recency":    recencyScore,
		"study_type": tierScore,
	}
	return keywordScore + recencyScore + tierScore, breakdown
}

func relevanceRecency(year int, now time.Time) float64 {
	if year <= 0 {
		return 0
	}
	switch age := now.Year() - year; {
	case age <= 2:
		return 3
	case age <= 5:
		return 2
	case age <= 10:
		return 1
	default:
		return 0
	}
}

// studyTypeBase maps study design onto the 0-10 quality base score.
var studyTypeBase = map[types.StudyType]float64{
	types.StudyMetaAnalysis:     10,
	types.StudySystematicReview: 9,
	types.StudyRCT:              8,
	types.StudyCohort:           6,
	types.StudyCaseControl:      5,
	types.StudyCrossSectional:   3,
	types.StudyCaseStudy:        1,
}

// QualityScorer implements the overall-evidence-quality formula used by
// the academic assistant to pick the best-evidence subset for synthesis.
type QualityScorer struct{}

// Name returns the strategy identifier.
func (QualityScorer) Name() string { return "quality" }

// Score averages four 0-10 components: study-type base, citation-impact
// (count/10, capped), sample-size tier, and recency tier.
func (QualityScorer) Score(p types.PaperRecord, _ types.SearchQuery, now time.Time) (float64, map[string]float64) {
	studyScore := studyTypeBase[p.StudyType]
	if studyScore == 0 {
		// Providers other than PubMed rarely report a study type; fall
		// back to scanning the text.
		if idx := tierIndex(strings.ToLower(p.Title + " " + p.Abstract)); idx >= 0 {
			studyScore = studyTypeBase[evidenceTiers[idx].studyType]
		}
	}

	impactScore := float64(p.CitationImpact) / 10
	if impactScore > 10 {
		impactScore = 10
	}

	sampleScore := sampleSizeScore(p.SampleSize)
	recencyScore := qualityRecency(p.Year, now)

	breakdown := map[string]float64{
		"study_type":  studyScore,
		"impact":      impactScore,
		"sample_size": sampleScore,
		"recency":     recencyScore,
	}
	return (studyScore + impactScore + sampleScore + recencyScore) / 4, breakdown
}

func sampleSizeScore(n int) float64 {
	switch {
	case n > 1000:
		return 10
	case n > 500:
		return 8
	case n > 100:
		return 6
	case n > 50:
		return 4
	default:
		return 2
	}
}

func qualityRecency(year int, now time.Time) float64 {
	if year <= 0 {
		return 4
	}
	switch age := now.Year() - year; {
	case age <= 2:
		return 10
	case age <= 5:
		return 8
	case age <= 10:
		return 6
	default:
		return 4
	}
}
