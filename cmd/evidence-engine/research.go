// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/mhprogram/evidence-engine/internal/cache"
	"github.com/mhprogram/evidence-engine/internal/pipeline"
	"github.com/mhprogram/evidence-engine/internal/synthesis"
	"github.com/mhprogram/evidence-engine/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [question...]",
	Short: "Search the literature with study-quality ranking",
	Long: `Research runs the academic pipeline: results are ranked by study design,
citation impact, sample size, and recency, and returned in a 20-paper page.

Repeat a question with --more to expand the page to 40 papers from the
cached candidate pool without re-querying the providers.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().Bool("more", false, "expand a previous answer's result page")
	researchCmd.Flags().Bool("json", false, "output the full response as JSON")
	researchCmd.Flags().String("save", "", "write the answer to a YAML file")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	return runQuestion(cmd, args, func(cfg types.PipelineConfig, store cache.Store, synth synthesis.Synthesizer) *pipeline.Pipeline {
		return pipeline.NewAcademic(cfg, store, synth, logger)
	})
}
