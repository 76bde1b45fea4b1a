// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o600))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyPubMed, "  pk_abc123  \n")
				writeFile(t, dir, KeySemanticScholar, "sk_xyz789")
				writeFile(t, dir, KeyOpenAlexEmail, "user@example.com\n")
				return dir
			},
			want: map[string]string{
				KeyPubMed:          "pk_abc123",
				KeySemanticScholar: "sk_xyz789",
				KeyOpenAlexEmail:   "user@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, KeyOpenAI, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				KeyOpenAI: "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, KeyPubMed, "pk_real")
				return dir
			},
			want: map[string]string{
				KeyPubMed: "pk_real",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	loaded := map[string]string{
		KeyPubMed:          "pk_pubmed",
		KeySemanticScholar: "sk_semantic",
		KeyOpenAI:          "sk_openai",
		KeyCrossrefMailto:  "dev@example.com",
		KeyOpenAlexEmail:   "dev@example.com",
	}

	var cfg types.PipelineConfig
	Apply(loaded, &cfg)

	assert.Equal(t, "pk_pubmed", cfg.Search.Providers[types.ProviderPubMed].APIKey)
	assert.Equal(t, "sk_semantic", cfg.Search.Providers[types.ProviderSemanticScholar].APIKey)
	assert.Equal(t, "sk_openai", cfg.Synthesis.APIKey)
	assert.Equal(t, "dev@example.com", cfg.Search.CrossrefMailto)
	assert.Equal(t, "dev@example.com", cfg.Search.OpenAlexEmail)
}

func TestApplyDoesNotOverrideExistingValues(t *testing.T) {
	loaded := map[string]string{
		KeyOpenAI: "from-secrets",
		KeyPubMed: "from-secrets",
	}

	cfg := types.PipelineConfig{}
	cfg.Synthesis.APIKey = "from-config"
	cfg.Search.Providers = map[types.Provider]types.ProviderConfig{
		types.ProviderPubMed: {Enabled: true, APIKey: "from-config"},
	}

	Apply(loaded, &cfg)

	assert.Equal(t, "from-config", cfg.Synthesis.APIKey)
	assert.Equal(t, "from-config", cfg.Search.Providers[types.ProviderPubMed].APIKey)
}

func TestApplyPreservesProviderSettings(t *testing.T) {
	loaded := map[string]string{KeyPubMed: "pk"}

	cfg := types.PipelineConfig{}
	cfg.Search.Providers = map[types.Provider]types.ProviderConfig{
		types.ProviderPubMed: {Enabled: true, MaxConcurrent: 2},
	}

	Apply(loaded, &cfg)

	pc := cfg.Search.Providers[types.ProviderPubMed]
	assert.Equal(t, "pk", pc.APIKey)
	assert.True(t, pc.Enabled)
	assert.Equal(t, 2, pc.MaxConcurrent)
}
