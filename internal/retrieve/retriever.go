// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve orchestrates a retrieval run: derive keywords from the
// request, fill the target count from the local store first, then query
// remote sources in a fixed order for the shortfall, enriching and
// persisting whatever arrives. One failing source never aborts the run;
// its outcome is recorded and the next source is tried.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/litreview/internal/conference"
	"github.com/pdiddy/litreview/internal/enrich"
	"github.com/pdiddy/litreview/internal/pdf"
	"github.com/pdiddy/litreview/internal/source"
	"github.com/pdiddy/litreview/internal/store"
	"github.com/pdiddy/litreview/pkg/types"
)

// arXiv relevance ordering is noisy, so it is asked for twice the
// shortfall and the surplus is cut after ranking.
const arxivOverfetch = 2

// Options describes one retrieval request. At least one of Abstract,
// Title, or Keywords must be set.
type Options struct {
	Abstract     string
	Title        string
	Keywords     []string
	MaxResults   int
	Sources      []string
	DownloadPDFs bool
}

// SourceOutcome records what one source contributed to a run.
type SourceOutcome struct {
	Source string
	Found  int
	Added  int
	Err    error
}

// Result is the outcome of a retrieval run.
type Result struct {
	Papers      []types.PaperRecord
	Outcomes    []SourceOutcome
	Query       string
	DupsRemoved int
}

// Retriever wires the store, the remote sources, and the supporting
// services together.
type Retriever struct {
	Store    *store.Store
	Sources  []source.Source
	Fetcher  *pdf.Fetcher
	Resolver *conference.Resolver

	// W receives progress and warning lines.
	W io.Writer
}

// Run executes one retrieval. Local papers are consulted first; remote
// sources are queried in their configured order only for the shortfall.
func (r *Retriever) Run(ctx context.Context, opts Options) (*Result, error) {
	w := r.W
	if w == nil {
		w = io.Discard
	}

	max := opts.MaxResults
	if max <= 0 {
		max = 10
	}

	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = deriveKeywords(opts.Title, opts.Abstract)
	}
	query := strings.Join(keywords, " ")
	if query == "" {
		query = strings.TrimSpace(opts.Title)
	}
	if query == "" {
		if a := strings.TrimSpace(opts.Abstract); a != "" {
			if len(a) > 50 {
				a = a[:50]
			}
			query = a
		}
	}
	if query == "" {
		return nil, fmt.Errorf("nothing to search for: provide an abstract, title, or keywords")
	}

	res := &Result{Query: query}

	local := r.Store.Search(store.Query{Text: query, Limit: 0})
	res.Outcomes = append(res.Outcomes, SourceOutcome{Source: "local", Found: len(local)})
	fmt.Fprintf(w, "local store: %d matching papers\n", len(local))

	papers := local
	if len(papers) < max {
		papers = append(papers, r.queryRemote(ctx, res, keywords, query, max-len(papers), opts, w)...)
	}

	papers, removed := dedupeByTitle(papers)
	res.DupsRemoved = removed
	rank(papers)
	if len(papers) > max {
		papers = papers[:max]
	}
	res.Papers = papers
	return res, nil
}

// queryRemote walks the enabled sources in order, asking each one for the
// remaining shortfall. Failures are recorded per source and the run
// continues.
func (r *Retriever) queryRemote(ctx context.Context, res *Result, keywords []string, query string, needed int, opts Options, w io.Writer) []types.PaperRecord {
	var collected []types.PaperRecord

	for _, src := range r.Sources {
		if needed <= 0 {
			break
		}
		if !sourceEnabled(src.Name(), opts.Sources) {
			continue
		}

		ask := needed
		if src.Name() == "arxiv" {
			ask = needed * arxivOverfetch
		}

		found, err := src.Search(ctx, keywords, query, ask)
		outcome := SourceOutcome{Source: src.Name(), Found: len(found), Err: err}
		if err != nil {
			if errors.Is(err, source.ErrForbidden) {
				fmt.Fprintf(w, "%s: access forbidden, consider configuring an API key\n", src.Name())
			} else {
				fmt.Fprintf(w, "%s: search failed: %v\n", src.Name(), err)
			}
			res.Outcomes = append(res.Outcomes, outcome)
			continue
		}

		for _, p := range found {
			// Results past the target (the arXiv overfetch in particular)
			// are not enriched, downloaded, or persisted.
			if outcome.Added >= needed {
				break
			}
			if r.Store.Exists(p.ID) {
				continue
			}
			added, err := r.ingest(ctx, p, opts, w)
			if err != nil {
				fmt.Fprintf(w, "%s: could not store %q: %v\n", src.Name(), p.Title, err)
				continue
			}
			collected = append(collected, added)
			outcome.Added++
		}

		needed -= outcome.Added
		res.Outcomes = append(res.Outcomes, outcome)
		fmt.Fprintf(w, "%s: %d found, %d new\n", src.Name(), outcome.Found, outcome.Added)
	}
	return collected
}

// ingest enriches one remote paper, optionally downloads its PDF, and
// stores it in the external partition.
func (r *Retriever) ingest(ctx context.Context, p types.PaperRecord, opts Options, w io.Writer) (types.PaperRecord, error) {
	p = enrich.Enrich(p)
	if r.Resolver != nil && p.Conference != "" {
		p.Conference = r.Resolver.Resolve(ctx, p.Conference)
	}

	var pdfData []byte
	if opts.DownloadPDFs && r.Fetcher != nil {
		var err error
		switch {
		case p.ArxivID != "":
			pdfData, err = r.Fetcher.FetchArxiv(ctx, p.ArxivID)
		case p.PDFURL != "":
			pdfData, err = r.Fetcher.Fetch(ctx, p.PDFURL)
		}
		if err != nil {
			fmt.Fprintf(w, "pdf download failed for %q: %v\n", p.Title, err)
		}
	}

	return r.Store.Add(p, pdfData, store.External)
}

// sourceEnabled applies the optional source name filter.
func sourceEnabled(name string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if strings.EqualFold(strings.TrimSpace(f), name) {
			return true
		}
	}
	return false
}

// dedupeByTitle drops papers whose whitespace-normalized lowercase title
// was already seen. The first occurrence wins, which favors local papers
// over remote ones given the collection order.
func dedupeByTitle(papers []types.PaperRecord) ([]types.PaperRecord, int) {
	seen := make(map[string]bool, len(papers))
	out := papers[:0]
	removed := 0
	for _, p := range papers {
		key := strings.Join(strings.Fields(strings.ToLower(p.Title)), " ")
		if key == "" || !seen[key] {
			seen[key] = true
			out = append(out, p)
			continue
		}
		removed++
	}
	return out, removed
}

// topTierVenues mark papers that outrank others regardless of citation
// counts. Single-token acronyms must match whole tokens.
var topTierVenues = []string{
	"CCS", "S&P", "USENIX Security", "NDSS",
	"ICSE", "FSE", "ISSTA", "PLDI", "POPL", "OOPSLA",
	"SOSP", "OSDI", "NeurIPS", "ICML", "ICLR",
}

// rank orders papers by (top-tier venue, citations, year), best first.
func rank(papers []types.PaperRecord) {
	sort.SliceStable(papers, func(i, j int) bool {
		ti, tj := isTopTier(papers[i]), isTopTier(papers[j])
		if ti != tj {
			return ti
		}
		if papers[i].Citations != papers[j].Citations {
			return papers[i].Citations > papers[j].Citations
		}
		return papers[i].Year > papers[j].Year
	})
}

func isTopTier(p types.PaperRecord) bool {
	for _, field := range []string{p.Conference, p.Venue, p.Journal} {
		if field == "" {
			continue
		}
		upper := strings.ToUpper(field)
		for _, venue := range topTierVenues {
			v := strings.ToUpper(venue)
			if strings.Contains(v, " ") {
				if strings.Contains(upper, v) {
					return true
				}
				continue
			}
			for _, tok := range strings.FieldsFunc(upper, func(r rune) bool {
				return !(r == '&' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
			}) {
				if tok == v {
					return true
				}
			}
		}
	}
	return false
}

// titleStopwords are skipped when deriving keywords from a title.
var titleStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"for": true, "with": true, "using": true, "based": true,
}

// abstractStopwords are skipped when topping up keywords from an abstract.
var abstractStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"for": true, "with": true, "this": true, "that": true,
	"these": true, "those": true, "are": true, "is": true,
	"be": true, "been": true, "being": true,
}

// deriveKeywords pulls up to five search terms from the title, topping up
// from the abstract's first sentence when the title yields fewer than
// three.
func deriveKeywords(title, abstract string) []string {
	var out []string
	seen := make(map[string]bool)

	for _, word := range strings.Fields(strings.ToLower(title)) {
		word = strings.Trim(word, ".,;:!?()\"'")
		if len(word) <= 3 || titleStopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
		if len(out) == 5 {
			return out
		}
	}

	if len(out) >= 3 {
		return out
	}

	sentence := abstract
	if idx := strings.IndexAny(sentence, ".!?"); idx > 0 {
		sentence = sentence[:idx]
	}
	added := 0
	for _, word := range strings.Fields(strings.ToLower(sentence)) {
		word = strings.Trim(word, ".,;:!?()\"'")
		if len(word) <= 4 || abstractStopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		out = append(out, word)
		added++
		if added == 3 || len(out) == 5 {
			break
		}
	}
	return out
}
