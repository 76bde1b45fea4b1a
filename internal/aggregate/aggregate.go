// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate fans a query out across all providers and variants,
// gathers the results in a deterministic order, and deduplicates them.
// The surviving order is the tie-break basis for stable ranking, so for a
// fixed provider-response snapshot the pipeline output is reproducible.
package aggregate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mhprogram/evidence-engine/internal/provider"
	"github.com/mhprogram/evidence-engine/pkg/types"
)

// FanOut issues providers × variants searches concurrently and gathers
// the batches in provider-order then variant-order, regardless of arrival
// time. Providers are expected to be Guard-wrapped; a nil batch simply
// contributes nothing.
func FanOut(ctx context.Context, providers []provider.Provider, variants []string, cfg types.SearchConfig, log *zap.Logger) [][]types.PaperRecord {
	batches := make([][]types.PaperRecord, len(providers)*len(variants))

	var wg sync.WaitGroup
	for pi, p := range providers {
		for vi, v := range variants {
			wg.Add(1)
			go func(slot int, p provider.Provider, variant string) {
				defer wg.Done()
				records, err := p.Search(ctx, variant, cfg)
				if err != nil {
					// Guard only lets cancellation through.
					return
				}
				batches[slot] = records
			}(pi*len(variants)+vi, p, v)
		}
	}
	wg.Wait()

	if log != nil {
		total := 0
		for _, b := range batches {
			total += len(b)
		}
		log.Debug("fan-out complete",
			zap.Int("providers", len(providers)),
			zap.Int("variants", len(variants)),
			zap.Int("records", total))
	}
	return batches
}

// Merge flattens the gathered batches preserving their order and drops
// duplicates by identity key, first occurrence wins. Fields of later
// duplicates are discarded rather than merged; the first provider to
// report a paper defines its record.
func Merge(batches [][]types.PaperRecord) []types.PaperRecord {
	var merged []types.PaperRecord
	seen := make(map[string]bool)

	for _, batch := range batches {
		for _, r := range batch {
			key := r.IdentityKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, r)
		}
	}
	return merged
}
