// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/internal/retrieve"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve",
	Short: "Retrieve papers relevant to an abstract, title, or keywords",
	Long: `Retrieve searches the local store and the remote sources (Semantic
Scholar, arXiv) for papers matching a draft abstract, a title, or explicit
keywords. New papers are enriched, optionally downloaded as PDFs, and
stored in the external partition.

The input file format uses "Title:" and "Abstract:" prefixed sections:

    Title: My Working Title
    Abstract: One or more lines of abstract text.`,
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().String("abstract", "", "draft abstract to search with")
	retrieveCmd.Flags().String("title", "", "working title to search with")
	retrieveCmd.Flags().String("input", "", "file with Title:/Abstract: sections")
	retrieveCmd.Flags().StringSlice("keywords", nil, "explicit search keywords (comma-separated)")
	retrieveCmd.Flags().Int("max-papers", 0, "papers to retrieve (default from config)")
	retrieveCmd.Flags().StringSlice("sources", nil, "restrict to these sources (arxiv, semantic_scholar)")
	retrieveCmd.Flags().Bool("download-pdfs", true, "download PDFs for new papers")
	retrieveCmd.Flags().String("export-bibtex", "", "write all store entries to this .bib file afterwards")
	retrieveCmd.Flags().Bool("show-stats", false, "print store statistics afterwards")

	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	abstract, _ := cmd.Flags().GetString("abstract")
	title, _ := cmd.Flags().GetString("title")
	input, _ := cmd.Flags().GetString("input")
	keywords, _ := cmd.Flags().GetStringSlice("keywords")
	maxPapers, _ := cmd.Flags().GetInt("max-papers")
	sources, _ := cmd.Flags().GetStringSlice("sources")
	downloadPDFs, _ := cmd.Flags().GetBool("download-pdfs")
	bibtexPath, _ := cmd.Flags().GetString("export-bibtex")
	showStats, _ := cmd.Flags().GetBool("show-stats")

	if input != "" {
		fileTitle, fileAbstract, err := readInputFile(input)
		if err != nil {
			return err
		}
		if title == "" {
			title = fileTitle
		}
		if abstract == "" {
			abstract = fileAbstract
		}
	}

	if maxPapers <= 0 {
		maxPapers = cfg.Sources.MaxPapers
	}
	if !cmd.Flags().Changed("download-pdfs") {
		downloadPDFs = cfg.PDF.DownloadPDFs
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	r := buildRetriever(cfg, s)

	res, err := r.Run(cmd.Context(), retrieve.Options{
		Abstract:     abstract,
		Title:        title,
		Keywords:     keywords,
		MaxResults:   maxPapers,
		Sources:      sources,
		DownloadPDFs: downloadPDFs,
	})
	if err != nil {
		return err
	}

	printResult(res)

	if bibtexPath != "" {
		f, err := os.Create(bibtexPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", bibtexPath, err)
		}
		defer f.Close()
		if err := s.ExportBibTeX(f); err != nil {
			return err
		}
		fmt.Printf("BibTeX written to %s\n", bibtexPath)
	}

	if showStats {
		printStats(s.Statistics())
	}
	return nil
}

func printResult(res *retrieve.Result) {
	fmt.Printf("query: %s\n", res.Query)
	for _, o := range res.Outcomes {
		if o.Err != nil {
			fmt.Printf("  %s: failed (%v)\n", o.Source, o.Err)
			continue
		}
		fmt.Printf("  %s: %d found, %d new\n", o.Source, o.Found, o.Added)
	}
	if res.DupsRemoved > 0 {
		fmt.Printf("  %d duplicate title(s) removed\n", res.DupsRemoved)
	}

	fmt.Printf("\n%d paper(s):\n", len(res.Papers))
	for i, p := range res.Papers {
		venue := p.Conference
		if venue == "" {
			venue = p.Venue
		}
		fmt.Printf("%2d. %s (%s %d, %d citations)\n", i+1, p.Title, venue, p.Year, p.Citations)
	}
}

// readInputFile parses a file with Title: and Abstract: prefixed sections.
// Lines after a prefix belong to that section until the next prefix.
func readInputFile(path string) (title, abstract string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	var current *strings.Builder
	var titleBuf, abstractBuf strings.Builder

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Title:"):
			current = &titleBuf
			line = strings.TrimPrefix(line, "Title:")
		case strings.HasPrefix(line, "Abstract:"):
			current = &abstractBuf
			line = strings.TrimPrefix(line, "Abstract:")
		}
		if current == nil {
			continue
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("reading input file: %w", err)
	}
	return strings.TrimSpace(titleBuf.String()), strings.TrimSpace(abstractBuf.String()), nil
}
