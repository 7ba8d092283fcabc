// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print paper store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(loadConfig())
		if err != nil {
			return err
		}
		printStats(s.Statistics())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printStats(st store.Stats) {
	fmt.Printf("papers:   %d\n", st.Total)
	fmt.Printf("internal: %d\n", st.Internal)
	fmt.Printf("external: %d\n", st.External)
	fmt.Printf("with PDF: %d\n", st.WithPDF)
}
