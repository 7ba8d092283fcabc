// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/internal/autoclean"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Reconcile PDFs and metadata in the external partition",
	Long: `Clean walks the external partition and repairs mismatches: PDFs without
a metadata file get one manufactured from the document text, and metadata
files whose PDF is gone are removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sum, err := autoclean.Clean(cfg.Store.ExternalDir, os.Stderr)
		if err != nil {
			return err
		}
		fmt.Printf("created %d, removed %d, failed %d\n", sum.Created, sum.Removed, sum.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
