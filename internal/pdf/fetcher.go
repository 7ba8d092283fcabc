// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdf downloads paper PDFs. Responses that are not actual PDF
// documents (HTML landing pages, paywalls) are treated as "no PDF
// available" rather than errors, so a failed download never aborts a
// retrieval run.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// arxivPDFBase is a var so tests can point it at a local server.
var arxivPDFBase = "https://arxiv.org/pdf/"

// retryBaseDelay is the unit for exponential backoff between attempts.
var retryBaseDelay = 2 * time.Second

// Some publishers reject default Go user agents outright.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

var pdfMagic = []byte("%PDF")

// Fetcher downloads PDFs over HTTP with bounded retries.
type Fetcher struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int
}

// NewFetcher returns a Fetcher using the given client. A nil client falls
// back to http.DefaultClient.
func NewFetcher(client *http.Client, maxRetries int) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Fetcher{Client: client, UserAgent: defaultUserAgent, MaxRetries: maxRetries}
}

// Fetch downloads the PDF at url. It returns (nil, nil) when the server
// says the document is not there or not accessible (403, 404) or when the
// response body is not a PDF; those conditions do not improve with
// retries. Timeouts and server errors are retried with exponential
// backoff up to MaxRetries attempts.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt < f.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, done, err := f.fetchOnce(ctx, url)
		if done {
			return data, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("downloading %s: %w", url, lastErr)
}

// fetchOnce performs one download attempt. done reports whether the
// outcome is final (success or a non-retryable condition).
func (f *Fetcher) fetchOnce(ctx context.Context, url string) (data []byte, done bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, true, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, true, err
		}
		// Timeouts and transient network failures are worth another try.
		return nil, false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, false, err
		}
		if !bytes.HasPrefix(body, pdfMagic) {
			return nil, true, nil
		}
		return body, true, nil
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusNotFound:
		// The PDF is not available to us; retrying will not change that.
		io.Copy(io.Discard, resp.Body)
		return nil, true, nil
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// FetchArxiv downloads the PDF for an arXiv identifier. Version suffixes
// (2301.00001v2) are stripped so the canonical latest version is fetched.
func (f *Fetcher) FetchArxiv(ctx context.Context, arxivID string) ([]byte, error) {
	id := stripVersion(arxivID)
	if id == "" {
		return nil, nil
	}
	return f.Fetch(ctx, arxivPDFBase+id)
}

// stripVersion removes a trailing vN version marker from an arXiv ID.
func stripVersion(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "v"); i > 0 {
		if _, err := strconv.Atoi(id[i+1:]); err == nil {
			return id[:i]
		}
	}
	return id
}
