// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package conference maps long-form venue names to short canonical
// abbreviations. Resolution is deterministic first (a fixed table of known
// mappings), with an optional LLM completion as enrichment for names the
// table does not cover. The resolver never returns an empty label when a
// non-empty fallback is available.
package conference

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"text/template"
)

// Completer is the single-turn completion contract the resolver depends
// on. Implementations may fail on auth or network errors; the resolver
// treats any failure as "no enrichment" and falls back.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// mapping pairs a long-form conference or journal name with its official
// abbreviation. The table doubles as the few-shot examples in the LLM prompt.
type mapping struct {
	Long   string
	Abbrev string
}

var knownMappings = []mapping{
	{"ACM Conference on Computer and Communications Security", "CCS"},
	{"IEEE Symposium on Security and Privacy", "S&P"},
	{"USENIX Security Symposium", "USENIX Security"},
	{"Network and Distributed System Security Symposium", "NDSS"},
	{"International Conference on Software Engineering", "ICSE"},
	{"ACM SIGSOFT Symposium on the Foundations of Software Engineering", "FSE"},
	{"ACM SIGSOFT International Symposium on Software Testing and Analysis", "ISSTA"},
	{"International Conference on Automated Software Engineering", "ASE"},
	{"ACM SIGPLAN Conference on Programming Language Design and Implementation", "PLDI"},
	{"ACM SIGPLAN-SIGACT Symposium on Principles of Programming Languages", "POPL"},
	{"ACM SIGPLAN Conference on Object-Oriented Programming, Systems, Languages, and Applications", "OOPSLA"},
	{"ACM Symposium on Operating Systems Principles", "SOSP"},
	{"USENIX Symposium on Operating Systems Design and Implementation", "OSDI"},
	{"Conference on Neural Information Processing Systems", "NeurIPS"},
	{"International Conference on Machine Learning", "ICML"},
	{"International Conference on Learning Representations", "ICLR"},
}

// promptTmpl asks the completion service for the abbreviation of one name,
// seeded with the known mappings as examples.
var promptTmpl = template.Must(template.New("abbrev").Parse(`You are an expert academic assistant. Convert each long-form conference or journal name into the short official abbreviation. Respond with the abbreviation only.

Examples:
{{range .Examples}}- "{{.Long}}" -> "{{.Abbrev}}"
{{end}}
Conference or Journal: "{{.Name}}"
Abbreviation:`))

// abbrevToken extracts the first run of abbreviation characters from a
// completion response line.
var abbrevToken = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9 &+/.-]*`)

// Resolver maps venue names to abbreviations. A nil Completer disables the
// LLM enrichment and leaves only the deterministic table.
type Resolver struct {
	completer Completer
}

// NewResolver returns a Resolver enriched by c. c may be nil.
func NewResolver(c Completer) *Resolver {
	return &Resolver{completer: c}
}

// Resolve returns the short abbreviation for name. Lookup order: the fixed
// mapping table (offline, always available), then the completion service
// when one is configured. On completion failure or an unusable response the
// original name is returned unchanged, so callers always get a non-empty
// label for a non-empty input.
func (r *Resolver) Resolve(ctx context.Context, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if abbrev, ok := lookup(name); ok {
		return abbrev
	}

	if r.completer != nil {
		prompt, err := BuildPrompt(name)
		if err == nil {
			raw, err := r.completer.Complete(ctx, prompt)
			if err == nil {
				if abbrev := normalizeResponse(raw); abbrev != "" {
					return abbrev
				}
			}
		}
	}

	return name
}

// lookup checks the deterministic table: an exact abbreviation, or a long
// form contained in (or containing) the name.
func lookup(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, m := range knownMappings {
		if strings.EqualFold(name, m.Abbrev) {
			return m.Abbrev, true
		}
		longLower := strings.ToLower(m.Long)
		if strings.Contains(lower, longLower) || strings.Contains(longLower, lower) {
			return m.Abbrev, true
		}
	}
	return "", false
}

// BuildPrompt renders the abbreviation prompt for name.
func BuildPrompt(name string) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, struct {
		Examples []mapping
		Name     string
	}{knownMappings, name})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// normalizeResponse reduces a raw completion to a clean abbreviation token:
// strip quotes and whitespace, keep the first line, extract the first run
// of abbreviation characters, upper-case it.
func normalizeResponse(response string) string {
	cleaned := strings.Trim(strings.TrimSpace(response), `"'.`)
	if cleaned == "" {
		return ""
	}
	firstLine := strings.TrimSpace(strings.SplitN(cleaned, "\n", 2)[0])
	if m := abbrevToken.FindString(firstLine); m != "" {
		return strings.ToUpper(strings.TrimSpace(m))
	}
	return strings.ToUpper(firstLine)
}
