// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the paper store as BibTeX or YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		s, err := openStore(loadConfig())
		if err != nil {
			return err
		}

		w := os.Stdout
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}

		switch format {
		case "bibtex":
			return s.ExportBibTeX(w)
		case "yaml":
			return s.ExportYAML(w)
		default:
			return fmt.Errorf("unknown format %q (want bibtex or yaml)", format)
		}
	},
}

func init() {
	exportCmd.Flags().String("format", "bibtex", "export format: bibtex or yaml")
	exportCmd.Flags().String("out", "", "output file (default stdout)")

	rootCmd.AddCommand(exportCmd)
}
