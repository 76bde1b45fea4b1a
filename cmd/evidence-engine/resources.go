// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mhprogram/evidence-engine/internal/crisis"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the crisis support resources",
	Long: `Resources prints the crisis support contacts shown when a question
contains crisis language. The built-in list can be replaced with a YAML
file via the resources_file config setting.`,
	RunE: runResources,
}

func init() {
	rootCmd.AddCommand(resourcesCmd)
}

func runResources(cmd *cobra.Command, args []string) error {
	filter := crisis.NewFilter()
	if path := viper.GetString("resources_file"); path != "" {
		loaded, err := crisis.LoadResources(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		filter = crisis.NewFilterWithResources(loaded)
		fmt.Fprintf(os.Stderr, "Using resources from %s\n", path)
	}

	for _, r := range filter.Resources() {
		fmt.Printf("%s — %s\n", r.Name, r.Phone)
		if r.URL != "" {
			fmt.Printf("  %s\n", r.URL)
		}
		if r.Description != "" {
			fmt.Printf("  %s\n", r.Description)
		}
	}
	return nil
}
