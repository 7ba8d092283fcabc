// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pdiddy/litreview/internal/source"
	"github.com/pdiddy/litreview/internal/store"
	"github.com/pdiddy/litreview/pkg/types"
)

// fakeSource returns canned papers and counts how it was called.
type fakeSource struct {
	name    string
	papers  []types.PaperRecord
	err     error
	calls   int
	lastAsk int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(_ context.Context, _ []string, _ string, maxResults int) ([]types.PaperRecord, error) {
	f.calls++
	f.lastAsk = maxResults
	if f.err != nil {
		return nil, f.err
	}
	if len(f.papers) > maxResults {
		return f.papers[:maxResults], nil
	}
	return f.papers, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	root := t.TempDir()
	s, err := store.Open(types.StoreConfig{
		InternalDir: filepath.Join(root, "papers_internal"),
		ExternalDir: filepath.Join(root, "papers_external"),
	}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return s
}

func addLocal(t *testing.T, s *store.Store, papers ...types.PaperRecord) {
	t.Helper()
	for _, p := range papers {
		if _, err := s.Add(p, nil, store.External); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
}

func TestRunLocalSufficientSkipsRemote(t *testing.T) {
	s := newTestStore(t)
	addLocal(t, s,
		types.PaperRecord{ID: "l1", Title: "Fuzzing Contracts One", Year: 2021},
		types.PaperRecord{ID: "l2", Title: "Fuzzing Contracts Two", Year: 2022},
	)
	remote := &fakeSource{name: "semantic_scholar"}

	r := &Retriever{Store: s, Sources: []source.Source{remote}}
	res, err := r.Run(context.Background(), Options{Keywords: []string{"fuzzing"}, MaxResults: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if remote.calls != 0 {
		t.Errorf("remote source called %d times despite sufficient local papers", remote.calls)
	}
	if len(res.Papers) != 2 {
		t.Errorf("got %d papers, want 2", len(res.Papers))
	}
}

func TestRunFillsGapFromSources(t *testing.T) {
	s := newTestStore(t)
	addLocal(t, s, types.PaperRecord{ID: "l1", Title: "Fuzzing Contracts Locally", Year: 2021})

	ss := &fakeSource{name: "semantic_scholar", papers: []types.PaperRecord{
		{ID: "SS_1", Title: "Remote Paper One", Year: 2023},
	}}
	ax := &fakeSource{name: "arxiv", papers: []types.PaperRecord{
		{ID: "arXiv_1", Title: "Remote Paper Two", Year: 2022},
	}}

	r := &Retriever{Store: s, Sources: []source.Source{ss, ax}}
	res, err := r.Run(context.Background(), Options{Keywords: []string{"fuzzing"}, MaxResults: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Papers) != 3 {
		t.Errorf("got %d papers, want 3", len(res.Papers))
	}
	// Shortfall after local (1) and semantic scholar (1) is 1; arXiv is
	// asked for twice that.
	if ss.lastAsk != 2 {
		t.Errorf("semantic scholar asked for %d, want 2", ss.lastAsk)
	}
	if ax.lastAsk != 2 {
		t.Errorf("arxiv asked for %d, want 2 (2x shortfall of 1)", ax.lastAsk)
	}

	// Remote papers land in the store's external partition.
	if !s.Exists("SS_1") || !s.Exists("arXiv_1") {
		t.Error("remote papers not persisted")
	}
}

func TestRunStopsIngestingAtTarget(t *testing.T) {
	s := newTestStore(t)
	ax := &fakeSource{name: "arxiv", papers: []types.PaperRecord{
		{ID: "arXiv_1", Title: "First Overfetched Paper", Year: 2023},
		{ID: "arXiv_2", Title: "Second Overfetched Paper", Year: 2022},
	}}

	r := &Retriever{Store: s, Sources: []source.Source{ax}}
	res, err := r.Run(context.Background(), Options{Keywords: []string{"anything"}, MaxResults: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// arXiv is asked for twice the shortfall, but ingestion stops at the
	// target: the surplus must not reach the store.
	if ax.lastAsk != 2 {
		t.Errorf("arxiv asked for %d, want 2", ax.lastAsk)
	}
	if len(res.Papers) != 1 {
		t.Errorf("got %d papers, want 1", len(res.Papers))
	}
	if !s.Exists("arXiv_1") {
		t.Error("first paper not persisted")
	}
	if s.Exists("arXiv_2") {
		t.Error("paper past the target was persisted")
	}
}

func TestRunDedupesByNormalizedTitle(t *testing.T) {
	s := newTestStore(t)
	addLocal(t, s, types.PaperRecord{ID: "l1", Title: "Foo Bar", Year: 2020})

	remote := &fakeSource{name: "semantic_scholar", papers: []types.PaperRecord{
		{ID: "SS_dup", Title: "  foo   BAR  ", Year: 2021},
		{ID: "SS_new", Title: "Something Else", Year: 2021},
	}}

	r := &Retriever{Store: s, Sources: []source.Source{remote}}
	res, err := r.Run(context.Background(), Options{Keywords: []string{"foo"}, MaxResults: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", res.DupsRemoved)
	}
	for _, p := range res.Papers {
		if p.ID == "SS_dup" {
			t.Error("duplicate title survived dedup; first occurrence should win")
		}
	}
}

func TestRunRanksTopTierFirst(t *testing.T) {
	s := newTestStore(t)
	addLocal(t, s,
		types.PaperRecord{ID: "a", Title: "Highly Cited Journal Paper", Year: 2023, Citations: 500, Journal: "Journal of Database Systems"},
		types.PaperRecord{ID: "b", Title: "Top Venue Paper", Year: 2020, Citations: 10, Conference: "CCS"},
	)

	r := &Retriever{Store: s}
	res, err := r.Run(context.Background(), Options{Keywords: []string{"paper"}, MaxResults: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Papers) != 2 {
		t.Fatalf("got %d papers", len(res.Papers))
	}
	if res.Papers[0].ID != "b" {
		t.Errorf("first paper = %s, want the CCS paper ahead of the cited one", res.Papers[0].ID)
	}
}

func TestRunContinuesPastFailingSource(t *testing.T) {
	s := newTestStore(t)

	broken := &fakeSource{name: "semantic_scholar", err: fmt.Errorf("wrapped: %w", source.ErrForbidden)}
	working := &fakeSource{name: "arxiv", papers: []types.PaperRecord{
		{ID: "arXiv_ok", Title: "Surviving Paper", Year: 2022},
	}}

	var log bytes.Buffer
	r := &Retriever{Store: s, Sources: []source.Source{broken, working}, W: &log}
	res, err := r.Run(context.Background(), Options{Keywords: []string{"anything"}, MaxResults: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Papers) != 1 || res.Papers[0].ID != "arXiv_ok" {
		t.Errorf("papers = %+v, want the arXiv paper", res.Papers)
	}

	var foundErr bool
	for _, o := range res.Outcomes {
		if o.Source == "semantic_scholar" && errors.Is(o.Err, source.ErrForbidden) {
			foundErr = true
		}
	}
	if !foundErr {
		t.Errorf("outcomes missing the forbidden error: %+v", res.Outcomes)
	}
	if !bytes.Contains(log.Bytes(), []byte("API key")) {
		t.Errorf("log missing API key hint: %q", log.String())
	}
}

func TestRunSourceFilter(t *testing.T) {
	s := newTestStore(t)
	ss := &fakeSource{name: "semantic_scholar"}
	ax := &fakeSource{name: "arxiv", papers: []types.PaperRecord{
		{ID: "arXiv_only", Title: "From Arxiv", Year: 2022},
	}}

	r := &Retriever{Store: s, Sources: []source.Source{ss, ax}}
	_, err := r.Run(context.Background(), Options{Keywords: []string{"q"}, MaxResults: 2, Sources: []string{"arxiv"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ss.calls != 0 {
		t.Error("filtered-out source was called")
	}
	if ax.calls != 1 {
		t.Error("requested source was not called")
	}
}

func TestRunRejectsEmptyRequest(t *testing.T) {
	r := &Retriever{Store: newTestStore(t)}
	if _, err := r.Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for empty request")
	}
}

func TestDeriveKeywords(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		abstract string
		want     []string
	}{
		{
			"title terms only",
			"Detecting Reentrancy Vulnerabilities Using Symbolic Execution Methods",
			"",
			[]string{"detecting", "reentrancy", "vulnerabilities", "symbolic", "execution"},
		},
		{
			"stopwords and short words skipped",
			"The Art of Bug Finding",
			"Automated analysis discovers defects. Second sentence ignored.",
			[]string{"finding", "automated", "analysis", "discovers"},
		},
		{
			"abstract only",
			"",
			"Blockchain consensus protocols require careful validation. More text.",
			[]string{"blockchain", "consensus", "protocols"},
		},
		{
			"empty input",
			"",
			"",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveKeywords(tt.title, tt.abstract); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("deriveKeywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTopTier(t *testing.T) {
	tests := []struct {
		name  string
		paper types.PaperRecord
		want  bool
	}{
		{"conference acronym", types.PaperRecord{Conference: "CCS"}, true},
		{"venue contains acronym token", types.PaperRecord{Venue: "Proceedings of ISSTA 2023"}, true},
		{"multiword marker", types.PaperRecord{Venue: "31st USENIX Security Symposium"}, true},
		{"acronym inside word does not count", types.PaperRecord{Journal: "Journal of Database Systems"}, false},
		{"no venue info", types.PaperRecord{Title: "Whatever"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTopTier(tt.paper); got != tt.want {
				t.Errorf("isTopTier() = %v, want %v", got, tt.want)
			}
		})
	}
}
