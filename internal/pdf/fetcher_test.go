// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestFetcher(maxRetries int) *Fetcher {
	f := NewFetcher(nil, maxRetries)
	return f
}

func TestFetchReturnsPDFBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.5 fake document body"))
	}))
	defer server.Close()

	data, err := newTestFetcher(3).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data[:4]) != "%PDF" {
		t.Errorf("unexpected payload: %q", data)
	}
}

func TestFetchRejectsNonPDFBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Please sign in</body></html>"))
	}))
	defer server.Close()

	data, err := newTestFetcher(3).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if data != nil {
		t.Errorf("expected nil data for HTML response, got %d bytes", len(data))
	}
}

func TestFetchAbsentStatusesDoNotRetry(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusNotFound} {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(status)
		}))

		data, err := newTestFetcher(5).Fetch(context.Background(), server.URL)
		server.Close()

		if err != nil {
			t.Errorf("status %d: unexpected error %v", status, err)
		}
		if data != nil {
			t.Errorf("status %d: expected nil data", status)
		}
		if calls != 1 {
			t.Errorf("status %d: %d calls, want 1", status, calls)
		}
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	oldDelay := retryBaseDelay
	retryBaseDelay = time.Millisecond
	defer func() { retryBaseDelay = oldDelay }()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	data, err := newTestFetcher(5).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if data == nil {
		t.Fatal("expected PDF data after retries")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	oldDelay := retryBaseDelay
	retryBaseDelay = time.Millisecond
	defer func() { retryBaseDelay = oldDelay }()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	if _, err := newTestFetcher(2).Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestFetchArxivStripsVersion(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	oldBase := arxivPDFBase
	arxivPDFBase = server.URL + "/pdf/"
	defer func() { arxivPDFBase = oldBase }()

	if _, err := newTestFetcher(3).FetchArxiv(context.Background(), "2301.00001v3"); err != nil {
		t.Fatalf("FetchArxiv: %v", err)
	}
	if gotPath != "/pdf/2301.00001" {
		t.Errorf("path = %q, want /pdf/2301.00001", gotPath)
	}
}

func TestStripVersion(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2301.00001v2", "2301.00001"},
		{"2301.00001", "2301.00001"},
		{"cs/0112017v1", "cs/0112017"},
		{"v2", "v2"},
		{"  2105.12345v10 ", "2105.12345"},
	}
	for _, tt := range tests {
		if got := stripVersion(tt.in); got != tt.want {
			t.Errorf("stripVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFetchEmptyURL(t *testing.T) {
	data, err := newTestFetcher(3).Fetch(context.Background(), "")
	if err != nil || data != nil {
		t.Errorf("Fetch(\"\") = (%v, %v), want (nil, nil)", data, err)
	}
}
