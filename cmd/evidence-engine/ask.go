// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/mhprogram/evidence-engine/internal/cache"
	"github.com/mhprogram/evidence-engine/internal/pipeline"
	"github.com/mhprogram/evidence-engine/internal/synthesis"
	"github.com/mhprogram/evidence-engine/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer a mental-health question from peer-reviewed evidence",
	Long: `Ask runs the mental-health pipeline: the question passes a crisis safety
gate, is normalized into clinical search terms, fanned out to the literature
providers, and the top results are synthesized into a cited answer.

Questions containing crisis language are answered with support resources
only; no search or synthesis runs on them.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the full response as JSON")
	askCmd.Flags().String("save", "", "write the answer to a YAML file")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	return runQuestion(cmd, args, func(cfg types.PipelineConfig, store cache.Store, synth synthesis.Synthesizer) *pipeline.Pipeline {
		return pipeline.NewMentalHealth(cfg, store, synth, logger)
	})
}
