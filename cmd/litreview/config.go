// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/viper"

	"github.com/pdiddy/litreview/internal/conference"
	"github.com/pdiddy/litreview/internal/llm"
	"github.com/pdiddy/litreview/internal/pdf"
	"github.com/pdiddy/litreview/internal/retrieve"
	"github.com/pdiddy/litreview/internal/source"
	"github.com/pdiddy/litreview/internal/store"
	"github.com/pdiddy/litreview/pkg/types"
)

// loadConfig layers the config file over the defaults and fills API keys
// from the loaded secrets.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()

	if v := viper.GetString("store.internal_dir"); v != "" {
		cfg.Store.InternalDir = v
	}
	if v := viper.GetString("store.external_dir"); v != "" {
		cfg.Store.ExternalDir = v
	}
	if v := viper.GetDuration("sources.timeout"); v > 0 {
		cfg.Sources.Timeout = v
	}
	if v := viper.GetString("sources.user_agent"); v != "" {
		cfg.Sources.UserAgent = v
	}
	if v := viper.GetInt("sources.max_papers"); v > 0 {
		cfg.Sources.MaxPapers = v
	}
	if viper.IsSet("sources.enable_arxiv") {
		cfg.Sources.EnableArxiv = viper.GetBool("sources.enable_arxiv")
	}
	if viper.IsSet("sources.enable_semantic_scholar") {
		cfg.Sources.EnableSemanticScholar = viper.GetBool("sources.enable_semantic_scholar")
	}
	if v := viper.GetDuration("sources.request_interval"); v > 0 {
		cfg.Sources.RequestInterval = v
	}
	if viper.IsSet("pdf.download_pdfs") {
		cfg.PDF.DownloadPDFs = viper.GetBool("pdf.download_pdfs")
	}
	if v := viper.GetInt("pdf.max_retries"); v > 0 {
		cfg.PDF.MaxRetries = v
	}
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}

	cfg.Sources.SemanticScholarAPIKey = loadedKeys.SemanticScholar
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = loadedKeys.OpenAI
	default:
		cfg.LLM.APIKey = loadedKeys.Anthropic
	}
	return cfg
}

// openStore opens the configured store with warnings on stderr.
func openStore(cfg types.Config) (*store.Store, error) {
	return store.Open(cfg.Store, os.Stderr)
}

// buildRetriever assembles the retrieval pipeline from cfg. The conference
// resolver runs without LLM enrichment when no completion key is
// configured.
func buildRetriever(cfg types.Config, s *store.Store) *retrieve.Retriever {
	client := &http.Client{Timeout: cfg.Sources.Timeout}

	var sources []source.Source
	if cfg.Sources.EnableSemanticScholar {
		sources = append(sources, source.NewSemanticSource(
			client,
			cfg.Sources.SemanticScholarAPIKey,
			cfg.Sources.UserAgent,
			cfg.Sources.RequestInterval,
		))
	}
	if cfg.Sources.EnableArxiv {
		sources = append(sources, &source.ArxivSource{Client: client, UserAgent: cfg.Sources.UserAgent})
	}

	var completer conference.Completer
	if cfg.LLM.APIKey != "" {
		c, err := llm.New(cfg.LLM, client)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: conference resolver runs without LLM: %v\n", err)
		} else {
			completer = c
		}
	}

	pdfClient := &http.Client{Timeout: cfg.PDF.Timeout}
	return &retrieve.Retriever{
		Store:    s,
		Sources:  sources,
		Fetcher:  pdf.NewFetcher(pdfClient, cfg.PDF.MaxRetries),
		Resolver: conference.NewResolver(completer),
		W:        os.Stderr,
	}
}
