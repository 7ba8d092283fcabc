// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"reflect"
	"testing"

	"github.com/pdiddy/litreview/pkg/types"
)

func TestEnrichDerivesKeywordsAndTopics(t *testing.T) {
	p := types.PaperRecord{
		ID:       "SS_abc",
		Title:    "Detecting Reentrancy Vulnerabilities in Smart Contracts",
		Abstract: "We apply static analysis and fuzzing to Ethereum bytecode.",
	}

	got := Enrich(p)

	for _, kw := range []string{"smart-contracts", "reentrancy", "vulnerability", "bytecode", "analysis"} {
		if !contains(got.Keywords, kw) {
			t.Errorf("keywords missing %q: %v", kw, got.Keywords)
		}
	}
	for _, topic := range []string{"smart-contract-security", "program-analysis", "fuzzing"} {
		if !contains(got.Topics, topic) {
			t.Errorf("topics missing %q: %v", topic, got.Topics)
		}
	}
}

func TestEnrichIdempotent(t *testing.T) {
	p := types.PaperRecord{
		ID:       "arXiv_2301.00001",
		Title:    "Fuzzing Smart Contracts With Neural Networks",
		Abstract: "Machine learning guided test generation for DeFi protocols.",
		Venue:    "Proceedings of the 44th International Conference on Software Engineering (ICSE 2022)",
		Source:   "arxiv",
		Keywords: []string{"Existing-Keyword"},
	}

	once := Enrich(p)
	twice := Enrich(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("enrichment not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
	if !contains(once.Keywords, "existing-keyword") {
		t.Errorf("existing keyword dropped: %v", once.Keywords)
	}
}

func TestEnrichPreservesExistingConference(t *testing.T) {
	p := types.PaperRecord{
		Title:      "Some Paper",
		Conference: "CustomConf",
		Venue:      "International Conference on Software Engineering",
	}
	if got := Enrich(p); got.Conference != "CustomConf" {
		t.Errorf("Conference = %q, want CustomConf", got.Conference)
	}
}

func TestEnrichBackfillsArxivID(t *testing.T) {
	p := types.PaperRecord{
		ID:     "arXiv_2105.12345",
		Title:  "A Paper",
		Source: "arxiv",
	}
	if got := Enrich(p); got.ArxivID != "2105.12345" {
		t.Errorf("ArxivID = %q, want 2105.12345", got.ArxivID)
	}

	// Non-arXiv sources are left alone even with a similar ID shape.
	p.Source = "semantic_scholar"
	if got := Enrich(p); got.ArxivID != "" {
		t.Errorf("ArxivID = %q, want empty for non-arxiv source", got.ArxivID)
	}
}

func TestConference(t *testing.T) {
	tests := []struct {
		name  string
		venue string
		want  string
	}{
		{"known abbreviation", "ICSE 2023", "ICSE"},
		{"long form with embedded abbreviation", "Proceedings of the ACM Conference on Computer and Communications Security (CCS)", "CCS"},
		{"usenix security", "31st USENIX Security Symposium", "USENIX Security"},
		{"ASE does not fire inside database", "Journal of Database Systems", "Journal of Database Systems"},
		{"unknown acronym kept as cleaned venue", "EuroSys European Conference", "EuroSys European Conference"},
		{"all-caps acronym extracted", "2021 Annual EUROSYS Meeting", "EUROSYS"},
		{"proceedings prefix stripped", "Proceedings of the Workshop on Binary Analysis", "Workshop on Binary Analysis"},
		{"empty venue", "", ""},
		{"long venue truncated", "International Colloquium on Theoretical Aspects of Computing and Related Formalisms and Methods", "International Colloquium on Theoretical Aspects of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Conference(tt.venue); got != tt.want {
				t.Errorf("Conference(%q) = %q, want %q", tt.venue, got, tt.want)
			}
		})
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
