// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhprogram/evidence-engine/internal/answerfile"
	"github.com/mhprogram/evidence-engine/internal/cache"
	"github.com/mhprogram/evidence-engine/internal/pipeline"
	"github.com/mhprogram/evidence-engine/internal/synthesis"
	"github.com/mhprogram/evidence-engine/pkg/types"
)

// buildStore selects the cache backend: the SQLite store at cache.path,
// or the per-process in-memory store with --no-cache or an empty path.
func buildStore(cmd *cobra.Command, cfg types.PipelineConfig) (cache.Store, func(), error) {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	if noCache || cfg.Cache.Path == "" {
		return cache.NewMemory(), func() {}, nil
	}

	store, err := cache.NewSQLite(cfg.Cache.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening response cache: %w", err)
	}
	return store, func() { store.Close() }, nil
}

// buildSynthesizer returns the synthesis client, or nil when no API key
// is configured; the pipeline then degrades to a citation list.
func buildSynthesizer(cfg types.PipelineConfig) synthesis.Synthesizer {
	if cfg.Synthesis.APIKey == "" {
		return nil
	}
	return &synthesis.OpenAI{
		Client: &http.Client{Timeout: cfg.Synthesis.Timeout},
		Config: cfg.Synthesis,
	}
}

// runQuestion executes one question through the given pipeline flow and
// handles presentation and the optional answer file.
func runQuestion(cmd *cobra.Command, args []string, build func(types.PipelineConfig, cache.Store, synthesis.Synthesizer) *pipeline.Pipeline) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("provide a question, e.g.: how does exercise affect sleep quality?")
	}

	cfg := pipelineConfig()
	store, closeStore, err := buildStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	p := build(cfg, store, buildSynthesizer(cfg))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	more, _ := cmd.Flags().GetBool("more")
	var resp types.QueryResponse
	if more {
		resp, err = p.More(ctx, question)
	} else {
		resp, err = p.Run(ctx, question)
	}
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := answerfile.Write(path, p.Name(), question, resp); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved answer to %s\n", path)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return writeResponse(os.Stdout, resp, jsonOutput)
}

func writeResponse(w io.Writer, resp types.QueryResponse, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.CrisisDetected {
		fmt.Fprintln(w, resp.ResponseText)
		fmt.Fprintln(w)
		for _, r := range resp.CrisisResources {
			fmt.Fprintf(w, "  %s — %s", r.Name, r.Phone)
			if r.URL != "" {
				fmt.Fprintf(w, " (%s)", r.URL)
			}
			fmt.Fprintln(w)
			if r.Description != "" {
				fmt.Fprintf(w, "    %s\n", r.Description)
			}
		}
		return nil
	}

	fmt.Fprintln(w, resp.ResponseText)

	if s := resp.Synthesis; s != nil && !s.ParseFailed {
		writeSection(w, "Key findings", s.KeyFindings)
		writeSection(w, "Recommendations", s.Recommendations)
		writeSection(w, "Warnings", s.Warnings)
	}

	if len(resp.Papers) > 0 {
		fmt.Fprintf(w, "\nPapers (%d", len(resp.Papers))
		if resp.HasMore {
			fmt.Fprint(w, ", more available with --more")
		}
		fmt.Fprintln(w, "):")
		for i, sp := range resp.Papers {
			fmt.Fprintf(w, "%3d. [%.1f] %s\n", i+1, sp.RelevanceScore, synthesis.Citation(sp.PaperRecord))
			if sp.URL != "" {
				fmt.Fprintf(w, "       %s\n", sp.URL)
			}
		}
	}

	if resp.Cached {
		fmt.Fprintln(w, "\n(cached)")
	}
	return nil
}

func writeSection(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
