package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evidence-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig holds per-provider quota settings for one adapter.
type ProviderConfig struct {
	// Enabled controls whether the adapter participates in fan-out.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// APIKey is an optional key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxConcurrent bounds in-flight requests to this provider (default 4).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`

	// MinInterval is the minimum spacing between requests to this
	// provider (default 120ms; PubMed 350ms; Semantic Scholar 1s).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`
}

// SearchConfig holds settings for the provider fan-out stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the per-provider result limit per variant (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxVariants caps the number of query variants sent to each provider
	// (default 3) to bound fan-out cost.
	MaxVariants int `json:"max_variants" yaml:"max_variants"`

	// CrossrefMailto is the contact address sent to Crossref's polite pool.
	CrossrefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`

	// OpenAlexEmail is the mailto parameter for OpenAlex polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// Providers maps provider name to its quota settings.
	Providers map[Provider]ProviderConfig `json:"providers" yaml:"providers"`
}

// CacheConfig holds settings for the response cache.
type CacheConfig struct {
	// Path is the SQLite database file; empty selects the in-memory store.
	Path string `json:"path" yaml:"path"`

	// TTL is the entry lifetime (default 24h).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// SynthesisConfig holds settings for the synthesis collaborator call.
type SynthesisConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the chat model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the synthesis API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens bounds the completion length (default 1200).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// TopPapers is how many ranked papers are handed to the model (default 5).
	TopPapers int `json:"top_papers" yaml:"top_papers"`
}

// RankConfig holds page sizes for the ranking stage.
type RankConfig struct {
	// PageSize is the initial result page (8 for the mental-health
	// pipeline, 20 for the academic one).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MorePageSize is the expanded page returned by "show more"
	// (academic pipeline only, default 40).
	MorePageSize int `json:"more_page_size" yaml:"more_page_size"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Search    SearchConfig    `json:"search" yaml:"search"`
	Rank      RankConfig      `json:"rank" yaml:"rank"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Synthesis SynthesisConfig `json:"synthesis" yaml:"synthesis"`

	// ResourcesFile optionally overrides the built-in crisis resource list.
	ResourcesFile string `json:"resources_file,omitempty" yaml:"resources_file,omitempty"`
}
