// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/litreview/internal/httputil"
	"github.com/pdiddy/litreview/pkg/types"
)

// Semantic Scholar Graph API endpoints. Vars so tests can substitute
// httptest servers.
var (
	semanticAPIBase  = "https://api.semanticscholar.org/graph/v1/paper/search"
	semanticPaperAPI = "https://api.semanticscholar.org/recommendations/v1/papers/forpaper/"
)

const (
	semanticFields    = "paperId,title,abstract,authors,year,venue,journal,citationCount,url,openAccessPdf"
	semanticBatchSize = 100
)

// SemanticSource queries the Semantic Scholar Graph API. Requests are
// paced with a rate limiter; the unauthenticated tier is shared and
// aggressive callers get throttled for everyone.
type SemanticSource struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
	Limiter   *rate.Limiter
}

// NewSemanticSource returns a source pacing requests at one per interval.
func NewSemanticSource(client *http.Client, apiKey, userAgent string, interval time.Duration) *SemanticSource {
	if client == nil {
		client = http.DefaultClient
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &SemanticSource{
		Client:    client,
		APIKey:    apiKey,
		UserAgent: userAgent,
		Limiter:   rate.NewLimiter(limit, 1),
	}
}

// Name returns the source identifier.
func (s *SemanticSource) Name() string { return "semantic_scholar" }

// Search pages through results in batches of at most 100 until maxResults
// papers are collected, the server reports the total is exhausted, or a
// batch comes back empty. A 403 is reported as ErrForbidden so callers
// can suggest configuring an API key.
func (s *SemanticSource) Search(ctx context.Context, keywords []string, query string, maxResults int) ([]types.PaperRecord, error) {
	q := buildSemanticQuery(keywords, query)
	if q == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	var papers []types.PaperRecord
	offset := 0
	for len(papers) < maxResults {
		limit := maxResults - len(papers)
		if limit > semanticBatchSize {
			limit = semanticBatchSize
		}

		params := url.Values{
			"query":  {q},
			"limit":  {strconv.Itoa(limit)},
			"offset": {strconv.Itoa(offset)},
			"fields": {semanticFields},
		}

		var sr semanticResponse
		if err := s.get(ctx, semanticAPIBase+"?"+params.Encode(), &sr); err != nil {
			return nil, err
		}
		if len(sr.Data) == 0 {
			break
		}

		for _, sp := range sr.Data {
			papers = append(papers, sp.record())
		}
		offset += len(sr.Data)
		if sr.Total > 0 && offset >= sr.Total {
			break
		}
	}

	if len(papers) > maxResults {
		papers = papers[:maxResults]
	}
	return papers, nil
}

// Recommendations returns papers related to the given store paper ID. The
// SS_ prefix local records carry is stripped before calling the API.
func (s *SemanticSource) Recommendations(ctx context.Context, paperID string, maxResults int) ([]types.PaperRecord, error) {
	id := strings.TrimPrefix(strings.TrimSpace(paperID), "SS_")
	if id == "" {
		return nil, nil
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{
		"limit":  {strconv.Itoa(maxResults)},
		"fields": {semanticFields},
	}

	var rr recommendationsResponse
	if err := s.get(ctx, semanticPaperAPI+url.PathEscape(id)+"?"+params.Encode(), &rr); err != nil {
		return nil, err
	}

	papers := make([]types.PaperRecord, 0, len(rr.RecommendedPapers))
	for _, sp := range rr.RecommendedPapers {
		papers = append(papers, sp.record())
	}
	return papers, nil
}

// get performs one rate-limited, retried GET and decodes the JSON body
// into out.
func (s *SemanticSource) get(ctx context.Context, reqURL string, out any) error {
	if err := s.Limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("Semantic Scholar: %w", ErrForbidden)
	default:
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// buildSemanticQuery space-joins keywords with the free-text query.
func buildSemanticQuery(keywords []string, query string) string {
	var parts []string
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			parts = append(parts, kw)
		}
	}
	if query = strings.TrimSpace(query); query != "" {
		parts = append(parts, query)
	}
	return strings.Join(parts, " ")
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type recommendationsResponse struct {
	RecommendedPapers []semanticPaper `json:"recommendedPapers"`
}

type semanticPaper struct {
	PaperID       string           `json:"paperId"`
	Title         string           `json:"title"`
	Abstract      string           `json:"abstract"`
	Year          int              `json:"year"`
	Venue         string           `json:"venue"`
	Journal       *semanticJournal `json:"journal"`
	CitationCount int              `json:"citationCount"`
	URL           string           `json:"url"`
	Authors       []semanticAuthor `json:"authors"`
	OpenAccessPDF *semanticPDF     `json:"openAccessPdf"`
}

type semanticJournal struct {
	Name   string `json:"name"`
	Volume string `json:"volume"`
	Pages  string `json:"pages"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticPDF struct {
	URL string `json:"url"`
}

// record converts an API paper into the store model.
func (sp semanticPaper) record() types.PaperRecord {
	p := types.PaperRecord{
		ID:        "SS_" + sp.PaperID,
		Title:     strings.TrimSpace(sp.Title),
		Abstract:  strings.TrimSpace(sp.Abstract),
		Year:      sp.Year,
		Venue:     strings.TrimSpace(sp.Venue),
		Citations: sp.CitationCount,
		URL:       sp.URL,
		Source:    "semantic_scholar",
	}
	for _, a := range sp.Authors {
		p.Authors = append(p.Authors, a.Name)
	}
	if sp.Journal != nil {
		p.Journal = strings.TrimSpace(sp.Journal.Name)
		p.Volume = sp.Journal.Volume
		p.Pages = sp.Journal.Pages
	}
	if sp.OpenAccessPDF != nil {
		p.PDFURL = sp.OpenAccessPDF.URL
	}
	if p.Venue != "" {
		p.Conference = guessConference(p.Venue)
	}
	return p
}
