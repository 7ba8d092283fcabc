// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/litreview/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv Atom API.
type ArxivSource struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Search queries arXiv with the keywords AND-joined as quoted phrases plus
// the free-text query. An empty query returns no results without a network
// call.
func (s *ArxivSource) Search(ctx context.Context, keywords []string, query string, maxResults int) ([]types.PaperRecord, error) {
	q := buildArxivQuery(keywords, query)
	if q == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{
		"search_query": {q},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(maxResults)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var papers []types.PaperRecord
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		p := types.PaperRecord{
			ID:       "arXiv_" + arxivID,
			Title:    collapseSpace(entry.Title),
			Abstract: collapseSpace(entry.Summary),
			ArxivID:  arxivID,
			DOI:      strings.TrimSpace(entry.DOI),
			URL:      strings.TrimSpace(entry.ID),
			Source:   "arxiv",
		}

		for _, a := range entry.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			p.Year = t.Year()
		}

		// journal_ref and the comment often carry the acceptance venue.
		if ref := strings.TrimSpace(entry.JournalRef); ref != "" {
			p.Venue = ref
			p.Conference = guessConference(ref)
		} else if comment := strings.TrimSpace(entry.Comment); comment != "" {
			p.Conference = guessConference(comment)
		}
		if p.Venue == "" {
			p.Venue = "arXiv preprint"
		}

		for _, link := range entry.Links {
			if link.Title == "pdf" {
				p.PDFURL = link.Href
				break
			}
		}

		papers = append(papers, p)
	}
	return papers, nil
}

// buildArxivQuery AND-joins quoted keyword phrases with the free-text
// query so multi-word keywords stay intact.
func buildArxivQuery(keywords []string, query string) string {
	var parts []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf(`all:%q`, kw))
	}
	if query = strings.TrimSpace(query); query != "" {
		parts = append(parts, "all:"+query)
	}
	return strings.Join(parts, " AND ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Summary    string        `xml:"summary"`
	Published  string        `xml:"published"`
	JournalRef string        `xml:"journal_ref"`
	Comment    string        `xml:"comment"`
	DOI        string        `xml:"doi"`
	Authors    []arxivAuthor `xml:"author"`
	Links      []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

// extractArxivID pulls the bare ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// collapseSpace folds the newlines and indentation arXiv embeds in titles
// and abstracts into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
