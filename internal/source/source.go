// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source holds the remote paper search adapters. Each adapter
// turns a keyword list plus free-text query into PaperRecords with
// source-prefixed IDs, leaving local concerns (dedup, ranking, storage) to
// the caller.
package source

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/litreview/pkg/types"
)

// ErrForbidden marks an authentication or authorization failure at a
// remote source. Callers can distinguish it from transient errors and
// suggest configuring an API key.
var ErrForbidden = errors.New("access forbidden by remote source")

// Source is a remote paper search backend.
type Source interface {
	Name() string
	Search(ctx context.Context, keywords []string, query string, maxResults int) ([]types.PaperRecord, error)
}

// conferenceMarkers are venue substrings that identify well-known
// conferences in free-form venue or comment text.
var conferenceMarkers = []string{
	"CCS", "S&P", "USENIX Security", "NDSS",
	"ICSE", "FSE", "ISSTA", "ASE",
	"PLDI", "POPL", "OOPSLA",
	"SOSP", "OSDI",
	"NeurIPS", "ICML", "ICLR",
}

// guessConference picks the first known marker found in text, falling back
// to the leading 50 characters of the text itself.
func guessConference(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	upper := strings.ToUpper(text)
	for _, marker := range conferenceMarkers {
		if markerMatches(upper, strings.ToUpper(marker)) {
			return marker
		}
	}
	if len(text) > 50 {
		return strings.TrimSpace(text[:50])
	}
	return text
}

// markerMatches requires whole-token matches for bare acronyms so ASE does
// not fire inside words like "database".
func markerMatches(upper, marker string) bool {
	if strings.Contains(marker, " ") {
		return strings.Contains(upper, marker)
	}
	for _, tok := range strings.FieldsFunc(upper, func(r rune) bool {
		return !(r == '&' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) {
		if tok == marker {
			return true
		}
	}
	return false
}
