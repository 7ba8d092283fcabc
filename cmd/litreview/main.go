// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litreview CLI. Retrieval,
// storage maintenance, and export are subcommands; configuration comes
// from litreview.yaml, environment variables, and flags.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litreview/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedKeys holds API keys loaded from .env, the environment, and
// .secrets/ at startup.
var loadedKeys secrets.Keys

// rootCmd is the base command for the litreview CLI.
var rootCmd = &cobra.Command{
	Use:   "litreview",
	Short: "Collect and organize research papers for literature reviews",
	Long: `litreview retrieves papers relevant to a draft abstract or title, stores
them as PDF plus metadata pairs, and keeps the store tidy.

The store has two partitions: an internal one for manually curated papers
and an external one filled by retrieval. Retrieval consults the local
store first and queries Semantic Scholar and arXiv only for the shortfall.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		keys, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedKeys = keys
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litreview.yaml or ~/.config/litreview/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litreview")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litreview"))
		}
	}

	viper.SetEnvPrefix("LITREVIEW")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
