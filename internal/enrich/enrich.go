// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich derives keywords, topics, and a conference label for a
// paper from the metadata it already carries. Enrichment is pure and
// idempotent: it never calls the network and running it twice produces the
// same record as running it once.
package enrich

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/litreview/pkg/types"
)

// keywordPattern tags papers whose title or abstract matches a domain
// pattern. Ordered so more specific keywords are assigned first.
type keywordPattern struct {
	Keyword string
	Pattern *regexp.Regexp
}

var keywordPatterns = []keywordPattern{
	{"smart-contracts", regexp.MustCompile(`(?i)smart contract`)},
	{"reentrancy", regexp.MustCompile(`(?i)reentranc`)},
	{"vulnerability", regexp.MustCompile(`(?i)vulnerab`)},
	{"security", regexp.MustCompile(`(?i)secur`)},
	{"verification", regexp.MustCompile(`(?i)verif`)},
	{"testing", regexp.MustCompile(`(?i)\btest`)},
	{"analysis", regexp.MustCompile(`(?i)analy`)},
	{"blockchain", regexp.MustCompile(`(?i)blockchain`)},
	{"defi", regexp.MustCompile(`(?i)\bdefi\b|decentralized finance`)},
	{"bytecode", regexp.MustCompile(`(?i)bytecode`)},
}

// topicPatterns groups papers into coarse research topics.
var topicPatterns = []keywordPattern{
	{"smart-contract-security", regexp.MustCompile(`(?i)smart contract.{0,60}(secur|vulnerab|attack|exploit)|(secur|vulnerab|attack|exploit).{0,60}smart contract`)},
	{"program-analysis", regexp.MustCompile(`(?i)(static|dynamic|symbolic|taint) (analysis|execution)`)},
	{"fuzzing", regexp.MustCompile(`(?i)fuzz`)},
	{"formal-verification", regexp.MustCompile(`(?i)(formal|model).{0,20}(verification|checking)`)},
	{"machine-learning", regexp.MustCompile(`(?i)(machine learning|deep learning|neural network|transformer|language model)`)},
	{"consensus", regexp.MustCompile(`(?i)consensus (protocol|algorithm|mechanism)`)},
	{"privacy", regexp.MustCompile(`(?i)(privacy|zero.knowledge|differential privacy)`)},
	{"software-testing", regexp.MustCompile(`(?i)(test (generation|oracle|suite)|mutation testing|regression test)`)},
	{"decentralized-finance", regexp.MustCompile(`(?i)(defi|decentralized finance|flash loan|liquidity pool)`)},
	{"program-repair", regexp.MustCompile(`(?i)(program|automated|patch) repair`)},
}

// capitalizedPhrase picks out runs of capitalized words as candidate
// keyword phrases.
var capitalizedPhrase = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

// phraseStopwords are capitalized words that start sentences or titles but
// carry no meaning on their own.
var phraseStopwords = map[string]bool{
	"The": true, "A": true, "An": true, "In": true, "On": true,
	"For": true, "With": true, "This": true, "These": true, "That": true,
}

// knownConferences are abbreviations recognized when extracting a
// conference label from a raw venue string.
var knownConferences = []string{
	"CCS", "NDSS", "ICSE", "FSE", "ISSTA", "ASE", "PLDI", "POPL",
	"OOPSLA", "SOSP", "OSDI", "NeurIPS", "ICML", "ICLR",
	"S&P", "USENIX Security",
}

var (
	yearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	acronymPattern = regexp.MustCompile(`\b[A-Z][A-Z&]+\b`)
)

// Enrich returns a copy of p with keywords, topics, conference label, and
// arXiv ID filled in where they can be derived. Existing values are kept;
// derived values are merged in.
func Enrich(p types.PaperRecord) types.PaperRecord {
	text := p.Title + " " + p.Abstract

	p.Keywords = mergeTerms(p.Keywords, deriveKeywords(text))
	p.Topics = mergeTerms(p.Topics, deriveTopics(text))

	if p.Conference == "" {
		venue := p.Venue
		if venue == "" {
			venue = p.Journal
		}
		p.Conference = Conference(venue)
	}

	if p.ArxivID == "" && strings.Contains(strings.ToLower(p.Source), "arxiv") {
		if id, ok := strings.CutPrefix(p.ID, "arXiv_"); ok {
			p.ArxivID = id
		}
	}

	return p
}

// deriveKeywords matches the domain patterns against the full text and
// pulls capitalized multi-word phrases out of it. A leading stopword is
// stripped from a phrase rather than disqualifying it.
func deriveKeywords(text string) []string {
	var out []string
	for _, kp := range keywordPatterns {
		if kp.Pattern.MatchString(text) {
			out = append(out, kp.Keyword)
		}
	}
	for _, phrase := range capitalizedPhrase.FindAllString(text, -1) {
		words := strings.Fields(phrase)
		if phraseStopwords[words[0]] {
			words = words[1:]
		}
		if len(words) < 2 {
			continue
		}
		phrase = strings.Join(words, " ")
		if len(phrase) > 3 {
			out = append(out, strings.ToLower(phrase))
		}
	}
	return out
}

func deriveTopics(text string) []string {
	var out []string
	for _, tp := range topicPatterns {
		if tp.Pattern.MatchString(text) {
			out = append(out, tp.Keyword)
		}
	}
	return out
}

// mergeTerms combines existing and derived term lists into a sorted,
// lowercased, duplicate-free set. Sorting keeps repeated enrichment stable.
func mergeTerms(existing, derived []string) []string {
	seen := make(map[string]bool, len(existing)+len(derived))
	var out []string
	for _, t := range append(append([]string{}, existing...), derived...) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Conference extracts a short conference label from a raw venue string. A
// recognized abbreviation wins; otherwise the first short all-caps token is
// used; otherwise the cleaned venue truncated to 50 characters.
func Conference(venue string) string {
	venue = strings.TrimSpace(venue)
	if venue == "" {
		return ""
	}

	for _, conf := range knownConferences {
		if matchesVenue(venue, conf) {
			return conf
		}
	}

	cleaned := yearPattern.ReplaceAllString(venue, "")
	for _, prefix := range []string{"Proceedings of the", "Proceedings of", "Proc. of", "Proc."} {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prefix))
	}

	for _, acronym := range acronymPattern.FindAllString(cleaned, -1) {
		if len(acronym) <= 10 {
			return acronym
		}
	}

	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if len(cleaned) > 50 {
		cleaned = strings.TrimSpace(cleaned[:50])
	}
	return cleaned
}

// matchesVenue reports whether venue names conf. Multi-word names match as
// substrings; bare acronyms must appear as a whole token so that e.g. ASE
// does not fire inside "database".
func matchesVenue(venue, conf string) bool {
	if strings.Contains(conf, " ") {
		return strings.Contains(strings.ToLower(venue), strings.ToLower(conf))
	}
	for _, tok := range strings.FieldsFunc(venue, func(r rune) bool {
		return !(r == '&' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if strings.EqualFold(tok, conf) {
			return true
		}
	}
	return false
}
