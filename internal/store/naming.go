// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/litreview/pkg/types"
)

const (
	maxSlugLength  = 100
	maxTitleInSlug = 60
)

var (
	invalidFileChars = regexp.MustCompile(`[\[\]<>:"/\\|?*]`)
	slugSeparators   = regexp.MustCompile(`[\s\-:]+`)
	repeatUnderscore = regexp.MustCompile(`_+`)

	arxivCategory = regexp.MustCompile(`ARXIV[:\s]*([A-Z]+)\.([A-Z]+)`)
	venueAcronym  = regexp.MustCompile(`\b[A-Z][A-Z&]+\b`)
)

// confAbbrevs maps long-form names to abbreviations for slug prefixes.
// Ordered: longer and more specific names first so SOSP is not shadowed
// by S&P and SECURITY is checked before SEC.
var confAbbrevs = []struct{ long, abbrev string }{
	{"computer and communications security", "CCS"},
	{"network and distributed system security", "NDSS"},
	{"operating systems principles", "SOSP"},
	{"operating systems design and implementation", "OSDI"},
	{"programming language design and implementation", "PLDI"},
	{"principles of programming languages", "POPL"},
	{"object-oriented programming", "OOPSLA"},
	{"software testing and analysis", "ISSTA"},
	{"foundations of software engineering", "FSE"},
	{"automated software engineering", "ASE"},
	{"software engineering", "ICSE"},
	{"usenix security", "SEC"},
	{"security and privacy", "SP"},
	{"neural information processing", "NeurIPS"},
	{"machine learning", "ICML"},
	{"learning representations", "ICLR"},
}

// topVenues are abbreviations recognized directly in venue strings.
var topVenues = []string{
	"NeurIPS", "NIPS", "ICML", "ICLR", "ICSE", "ISSTA", "OOPSLA",
	"PLDI", "POPL", "SOSP", "OSDI", "NDSS", "CCS", "FSE", "ASE",
}

// slug builds the filesystem stem for a paper: conference abbreviation,
// two-digit year, and a sanitized title prefix.
func slug(p types.PaperRecord) string {
	prefix := conferenceAbbrev(p)
	title := p.Title
	if len(title) > maxTitleInSlug {
		title = title[:maxTitleInSlug]
	}
	return sanitizeFilename(prefix+"_"+title, maxSlugLength)
}

// conferenceAbbrev derives the slug prefix from the paper's conference or
// venue fields plus a two-digit year, e.g. ICSE23 or arXivCSSE24.
func conferenceAbbrev(p types.PaperRecord) string {
	yearStr := "XX"
	if p.Year > 0 {
		yearStr = fmt.Sprintf("%02d", p.Year%100)
	}

	if conf := strings.TrimSpace(p.Conference); conf != "" && !strings.HasPrefix(conf, "arXiv:") {
		lower := strings.ToLower(conf)
		for _, m := range confAbbrevs {
			if strings.Contains(lower, m.long) {
				return m.abbrev + yearStr
			}
		}
		// Publisher names alone say nothing about the venue.
		if !isPublisherOnly(conf) {
			if abbrev := firstWord(conf); abbrev != "" {
				return abbrev + yearStr
			}
		}
	}

	venue := strings.TrimSpace(p.Venue)
	if venue != "" {
		upper := strings.ToUpper(venue)
		for _, top := range topVenues {
			if containsToken(upper, strings.ToUpper(top)) {
				return top + yearStr
			}
		}
		if m := arxivCategory.FindStringSubmatch(upper); m != nil {
			return "arXiv" + m[1] + m[2] + yearStr
		}
		// Acronyms are detected on the original casing; otherwise every
		// word of an upper-cased venue would qualify.
		if acronym := venueAcronym.FindString(venue); acronym != "" && acronym != "ARXIV" {
			return acronym + yearStr
		}
		if words := strings.Fields(upper); len(words) > 0 {
			initials := make([]byte, 0, 3)
			for _, word := range words[:min(3, len(words))] {
				initials = append(initials, word[0])
			}
			return string(initials) + yearStr
		}
	}

	if p.Year > 0 {
		return "Y" + yearStr
	}
	return "Unknown"
}

func isPublisherOnly(conf string) bool {
	switch strings.ToUpper(strings.TrimSpace(conf)) {
	case "IEEE", "ACM", "SPRINGER", "ELSEVIER", "USENIX":
		return true
	}
	return false
}

// containsToken reports whether want appears in s as a whole word, so ASE
// does not match inside DATABASE.
func containsToken(s, want string) bool {
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !(r == '&' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) {
		if tok == want {
			return true
		}
	}
	return false
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// sanitizeFilename makes s safe as a filename stem: drop characters that
// are invalid on common filesystems, fold whitespace, hyphens, and colons
// into underscores, collapse runs, and cap the length.
func sanitizeFilename(s string, maxLen int) string {
	s = invalidFileChars.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "_")
	s = repeatUnderscore.ReplaceAllString(s, "_")
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.Trim(s, "_")
	if s == "" {
		return "paper"
	}
	return s
}
