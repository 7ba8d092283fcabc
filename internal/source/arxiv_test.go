// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const arxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v2</id>
    <title>Fuzzing  Smart
  Contracts at Scale</title>
    <summary>We present a
  fuzzer for contracts.</summary>
    <published>2023-01-17T12:00:00Z</published>
    <arxiv:journal_ref xmlns:arxiv="http://arxiv.org/schemas/atom">Proc. ISSTA 2023</arxiv:journal_ref>
    <author><name>Jane Doe</name></author>
    <author><name>John Roe</name></author>
    <link href="http://arxiv.org/abs/2301.07041v2" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2301.07041v2" rel="related" type="application/pdf" title="pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2204.00001v1</id>
    <title>Another Paper</title>
    <summary>Abstract here.</summary>
    <published>2022-04-01T00:00:00Z</published>
    <arxiv:comment xmlns:arxiv="http://arxiv.org/schemas/atom">Accepted at ICSE 2022</arxiv:comment>
    <author><name>Ada Lovelace</name></author>
  </entry>
</feed>`

func TestArxivSearchParsesFeed(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(arxivFeedXML))
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	src := &ArxivSource{Client: server.Client(), UserAgent: "test"}
	papers, err := src.Search(context.Background(), []string{"smart contracts", "fuzzing"}, "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != `all:"smart contracts" AND all:"fuzzing"` {
		t.Errorf("search_query = %q", gotQuery)
	}
	if len(papers) != 2 {
		t.Fatalf("got %d papers, want 2", len(papers))
	}

	p := papers[0]
	if p.ID != "arXiv_2301.07041" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.ArxivID != "2301.07041" {
		t.Errorf("ArxivID = %q", p.ArxivID)
	}
	if p.Title != "Fuzzing Smart Contracts at Scale" {
		t.Errorf("Title = %q, want collapsed whitespace", p.Title)
	}
	if p.Year != 2023 {
		t.Errorf("Year = %d", p.Year)
	}
	if p.Venue != "Proc. ISSTA 2023" {
		t.Errorf("Venue = %q", p.Venue)
	}
	if p.Conference != "ISSTA" {
		t.Errorf("Conference = %q, want ISSTA", p.Conference)
	}
	if p.PDFURL != "http://arxiv.org/pdf/2301.07041v2" {
		t.Errorf("PDFURL = %q", p.PDFURL)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Jane Doe" {
		t.Errorf("Authors = %v", p.Authors)
	}

	// Second entry: no journal_ref, conference guessed from the comment.
	if papers[1].Conference != "ICSE" {
		t.Errorf("Conference = %q, want ICSE", papers[1].Conference)
	}
	if papers[1].Venue != "arXiv preprint" {
		t.Errorf("Venue = %q, want arXiv preprint", papers[1].Venue)
	}
}

func TestArxivSearchEmptyQueryNoCall(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	src := &ArxivSource{Client: server.Client()}
	papers, err := src.Search(context.Background(), nil, "   ", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if papers != nil || calls != 0 {
		t.Errorf("expected no results and no calls, got %d papers, %d calls", len(papers), calls)
	}
}

func TestArxivSearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	src := &ArxivSource{Client: server.Client()}
	if _, err := src.Search(context.Background(), []string{"fuzzing"}, "", 5); err == nil {
		t.Fatal("expected error on HTTP 503")
	}
}

func TestBuildArxivQuery(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		query    string
		want     string
	}{
		{"keywords quoted and joined", []string{"smart contracts", "fuzzing"}, "", `all:"smart contracts" AND all:"fuzzing"`},
		{"query appended as extra clause", []string{"fuzzing"}, "evm", `all:"fuzzing" AND all:evm`},
		{"query alone", nil, "reentrancy detection", "all:reentrancy detection"},
		{"blank keywords skipped", []string{"", " ", "fuzzing"}, "", `all:"fuzzing"`},
		{"empty", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildArxivQuery(tt.keywords, tt.query); got != tt.want {
				t.Errorf("buildArxivQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/cs/0112017v3", "cs/0112017"},
		{"http://example.com/nothing", ""},
	}
	for _, tt := range tests {
		if got := extractArxivID(tt.in); got != tt.want {
			t.Errorf("extractArxivID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGuessConference(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Proc. ISSTA 2023", "ISSTA"},
		{"Accepted at the 44th ICSE", "ICSE"},
		{"Journal of Database Systems", "Journal of Database Systems"},
		{"31st USENIX Security Symposium", "USENIX Security"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := guessConference(tt.in); got != tt.want {
			t.Errorf("guessConference(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
