// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"net/http"
	"time"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// defaultIntervals carries each provider's default minimum request spacing,
// matching the published quota policies (PubMed ~3 req/s, Semantic Scholar
// 1 req/s unauthenticated).
var defaultIntervals = map[types.Provider]time.Duration{
	types.ProviderPubMed:          350 * time.Millisecond,
	types.ProviderCrossref:        120 * time.Millisecond,
	types.ProviderOpenAlex:        120 * time.Millisecond,
	types.ProviderArxiv:           120 * time.Millisecond,
	types.ProviderSemanticScholar: time.Second,
}

// providerOrder fixes the fan-out gather order; results are deterministic
// for a fixed provider-response snapshot.
var providerOrder = []types.Provider{
	types.ProviderPubMed,
	types.ProviderCrossref,
	types.ProviderOpenAlex,
	types.ProviderArxiv,
	types.ProviderSemanticScholar,
}

// BuildAll constructs the enabled adapters in canonical order, each with
// its own limiter. A provider absent from cfg.Providers runs with
// defaults; an entry with Enabled=false is skipped.
func BuildAll(cfg types.SearchConfig, client *http.Client) []Provider {
	var providers []Provider
	for _, name := range providerOrder {
		pc, configured := cfg.Providers[name]
		if configured && !pc.Enabled {
			continue
		}

		interval := pc.MinInterval
		if interval <= 0 {
			interval = defaultIntervals[name]
		}
		lim := NewLimiter(pc.MaxConcurrent, interval)

		switch name {
		case types.ProviderPubMed:
			providers = append(providers, &PubMed{Client: client, Limiter: lim, APIKey: pc.APIKey})
		case types.ProviderCrossref:
			providers = append(providers, &Crossref{Client: client, Limiter: lim, Mailto: cfg.CrossrefMailto})
		case types.ProviderOpenAlex:
			providers = append(providers, &OpenAlex{Client: client, Limiter: lim, Email: cfg.OpenAlexEmail})
		case types.ProviderArxiv:
			providers = append(providers, &Arxiv{Client: client, Limiter: lim})
		case types.ProviderSemanticScholar:
			providers = append(providers, &SemanticScholar{Client: client, Limiter: lim, APIKey: pc.APIKey})
		}
	}
	return providers
}
