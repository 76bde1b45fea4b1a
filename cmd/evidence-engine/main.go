// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the evidence-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mhprogram/evidence-engine/internal/secrets"
	"github.com/mhprogram/evidence-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the process-wide structured logger, configured in the
// persistent pre-run hook.
var logger = zap.NewNop()

// rootCmd is the base command for the evidence-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "evidence-engine",
	Short: "Evidence-based literature retrieval and synthesis",
	Long: `evidence-engine answers questions with peer-reviewed literature. It queries
PubMed, Crossref, OpenAlex, arXiv, and Semantic Scholar in parallel,
deduplicates and ranks the results, and synthesizes a cited answer.

Two flows are available: "ask" runs the mental-health pipeline with a crisis
safety gate and relevance ranking; "research" runs the academic pipeline with
study-quality ranking and larger result pages.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = buildLogger(verbose)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./evidence-engine.yaml or ~/.config/evidence-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the on-disk response cache")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("evidence-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "evidence-engine"))
		}
	}

	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("search.user_agent", "evidence-engine/"+version)
	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.max_variants", 3)
	viper.SetDefault("cache.path", "evidence-cache.db")
	viper.SetDefault("cache.ttl", 24*time.Hour)
	viper.SetDefault("synthesis.model", "gpt-4o-mini")
	viper.SetDefault("synthesis.max_tokens", 1200)
	viper.SetDefault("synthesis.top_papers", 5)

	viper.SetEnvPrefix("EVIDENCE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func buildLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// pipelineConfig assembles the stage configuration from viper settings
// and the loaded secrets. Config-file and environment values win over
// the secrets directory.
func pipelineConfig() types.PipelineConfig {
	var cfg types.PipelineConfig

	cfg.Search.Timeout = viper.GetDuration("search.timeout")
	cfg.Search.UserAgent = viper.GetString("search.user_agent")
	cfg.Search.MaxResults = viper.GetInt("search.max_results")
	cfg.Search.MaxVariants = viper.GetInt("search.max_variants")
	cfg.Search.CrossrefMailto = viper.GetString("search.crossref_mailto")
	cfg.Search.OpenAlexEmail = viper.GetString("search.openalex_email")

	for _, name := range viper.GetStringSlice("search.disabled_providers") {
		if cfg.Search.Providers == nil {
			cfg.Search.Providers = make(map[types.Provider]types.ProviderConfig)
		}
		cfg.Search.Providers[types.Provider(name)] = types.ProviderConfig{Enabled: false}
	}

	cfg.Rank.PageSize = viper.GetInt("rank.page_size")
	cfg.Rank.MorePageSize = viper.GetInt("rank.more_page_size")

	cfg.Cache.Path = viper.GetString("cache.path")
	cfg.Cache.TTL = viper.GetDuration("cache.ttl")

	cfg.Synthesis.Timeout = viper.GetDuration("search.timeout")
	cfg.Synthesis.Model = viper.GetString("synthesis.model")
	cfg.Synthesis.APIKey = viper.GetString("synthesis.api_key")
	cfg.Synthesis.MaxTokens = viper.GetInt("synthesis.max_tokens")
	cfg.Synthesis.TopPapers = viper.GetInt("synthesis.top_papers")

	cfg.ResourcesFile = viper.GetString("resources_file")

	secrets.Apply(loadedSecrets, &cfg)
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
