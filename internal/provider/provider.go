// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider wraps the external literature APIs behind one adapter
// interface. Each adapter normalizes its provider's response schema into
// PaperRecord and owns its own rate limiter, so a slow provider never
// throttles the others.
package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// Provider searches a single literature API. Adapters return their
// provider's failures as errors; Guard absorbs them at the fan-out
// boundary so one broken provider cannot fail the overall query.
type Provider interface {
	Name() types.Provider
	Search(ctx context.Context, variant string, cfg types.SearchConfig) ([]types.PaperRecord, error)
}

// guarded decorates a Provider so Search never fails: errors are logged
// and replaced by an empty result set. Context cancellation is the one
// exception, surfaced so the pipeline can distinguish a user stop from a
// provider fault.
type guarded struct {
	p   Provider
	log *zap.Logger
}

// Guard wraps p with the failure-isolation contract.
func Guard(p Provider, log *zap.Logger) Provider {
	return &guarded{p: p, log: log}
}

func (g *guarded) Name() types.Provider { return g.p.Name() }

func (g *guarded) Search(ctx context.Context, variant string, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	records, err := g.p.Search(ctx, variant, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.log.Warn("provider search failed",
			zap.String("provider", string(g.p.Name())),
			zap.String("variant", variant),
			zap.Error(err))
		return nil, nil
	}
	return records, nil
}
