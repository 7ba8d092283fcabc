// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/internal/source"
)

var relatedCmd = &cobra.Command{
	Use:   "related <paper-id>",
	Short: "List papers related to a stored Semantic Scholar paper",
	Long: `Related asks the Semantic Scholar recommendation API for papers similar
to one already in the store. The paper must carry a Semantic Scholar ID
(SS_ prefix).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		maxResults, _ := cmd.Flags().GetInt("max-results")

		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		if p, ok := s.Get(args[0]); ok {
			fmt.Printf("related to: %s\n\n", p.Title)
		}

		src := source.NewSemanticSource(
			&http.Client{Timeout: cfg.Sources.Timeout},
			cfg.Sources.SemanticScholarAPIKey,
			cfg.Sources.UserAgent,
			cfg.Sources.RequestInterval,
		)
		papers, err := src.Recommendations(cmd.Context(), args[0], maxResults)
		if err != nil {
			return err
		}

		for i, p := range papers {
			fmt.Printf("%2d. %s (%d, %d citations)\n", i+1, p.Title, p.Year, p.Citations)
		}
		return nil
	},
}

func init() {
	relatedCmd.Flags().Int("max-results", 10, "maximum recommendations to list")

	rootCmd.AddCommand(relatedCmd)
}
