// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: pubmed-api-key, semantic-scholar-api-key, openai-api-key,
// crossref-mailto, openalex-email.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mhprogram/evidence-engine/pkg/types"
)

// Key file names recognized by Apply.
const (
	KeyPubMed          = "pubmed-api-key"
	KeySemanticScholar = "semantic-scholar-api-key"
	KeyOpenAI          = "openai-api-key"
	KeyCrossrefMailto  = "crossref-mailto"
	KeyOpenAlexEmail   = "openalex-email"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply copies recognized secrets into the pipeline configuration.
// Values already present in cfg win, so config-file and environment
// settings take precedence over the secrets directory.
func Apply(secrets map[string]string, cfg *types.PipelineConfig) {
	applyProviderKey(secrets, cfg, types.ProviderPubMed, KeyPubMed)
	applyProviderKey(secrets, cfg, types.ProviderSemanticScholar, KeySemanticScholar)

	if cfg.Synthesis.APIKey == "" {
		cfg.Synthesis.APIKey = secrets[KeyOpenAI]
	}
	if cfg.Search.CrossrefMailto == "" {
		cfg.Search.CrossrefMailto = secrets[KeyCrossrefMailto]
	}
	if cfg.Search.OpenAlexEmail == "" {
		cfg.Search.OpenAlexEmail = secrets[KeyOpenAlexEmail]
	}
}

func applyProviderKey(secrets map[string]string, cfg *types.PipelineConfig, p types.Provider, key string) {
	value := secrets[key]
	if value == "" {
		return
	}
	if cfg.Search.Providers == nil {
		cfg.Search.Providers = make(map[types.Provider]types.ProviderConfig)
	}
	pc := cfg.Search.Providers[p]
	if pc.APIKey != "" {
		return
	}
	pc.APIKey = value
	cfg.Search.Providers[p] = pc
}
