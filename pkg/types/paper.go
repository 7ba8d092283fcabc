// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litreview pipeline.
package types

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PaperRecord is the canonical paper entity shared by the store, the remote
// source adapters, the enricher, and the orchestrator. Optional fields use
// their zero value when absent (Year 0 means unknown).
type PaperRecord struct {
	// ID is globally unique and source-prefixed: "arXiv_<id>" for arXiv,
	// "SS_<id>" for Semantic Scholar, "auto_<stem>" for autoclean entries,
	// or a 16-hex-char content hash when no source id exists.
	ID string `json:"paper_id" yaml:"paper_id"`

	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors" yaml:"authors"`
	Year    int      `json:"year,omitempty" yaml:"year,omitempty"`

	Abstract string `json:"abstract" yaml:"abstract"`

	// Venue is the raw venue string from the source; Conference is the
	// resolved short abbreviation, when one could be determined.
	Venue      string `json:"venue,omitempty" yaml:"venue,omitempty"`
	Conference string `json:"conference,omitempty" yaml:"conference,omitempty"`
	Journal    string `json:"journal,omitempty" yaml:"journal,omitempty"`
	Volume     string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Pages      string `json:"pages,omitempty" yaml:"pages,omitempty"`
	DOI        string `json:"doi,omitempty" yaml:"doi,omitempty"`
	ArxivID    string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// PDFPath is set once a PDF has been persisted; its filename stem
	// always matches the metadata file's stem within the same partition.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	Citations int      `json:"citations" yaml:"citations"`
	Keywords  []string `json:"keywords" yaml:"keywords"`
	Topics    []string `json:"topics" yaml:"topics"`

	// Source identifies where the record came from: "local", "arxiv",
	// "semantic_scholar", or "autoclean".
	Source string `json:"source" yaml:"source"`

	// AddedDate is the timestamp of first persistence.
	AddedDate time.Time `json:"added_date,omitzero" yaml:"added_date,omitempty"`
}

// nonAlpha strips everything but letters from a BibTeX citation key part.
var nonAlpha = regexp.MustCompile(`[^a-zA-Z]`)

// venueProceedingsMarkers make a venue count as a conference publication
// for BibTeX entry-type selection.
var venueProceedingsMarkers = []string{"conference", "symposium", "workshop", "proceedings"}

// BibTeX renders the record as a BibTeX entry in Google Scholar style.
// The citation key is the first author's sanitized last name plus the year
// (or "n.d." when the year is unknown). Entry type: @article when a journal
// is present, @inproceedings for conference papers, @misc for arXiv-only
// preprints, @article otherwise.
func (p *PaperRecord) BibTeX() string {
	lastName := "Unknown"
	if len(p.Authors) > 0 {
		parts := strings.Fields(strings.TrimSpace(p.Authors[0]))
		if len(parts) > 0 {
			if cleaned := nonAlpha.ReplaceAllString(parts[len(parts)-1], ""); cleaned != "" {
				lastName = cleaned
			}
		}
	}

	yearStr := "n.d."
	if p.Year != 0 {
		yearStr = fmt.Sprintf("%d", p.Year)
	}
	key := lastName + yearStr

	author := "Unknown"
	if len(p.Authors) > 0 {
		author = strings.Join(p.Authors, " and ")
	}

	entryType := p.bibtexEntryType()

	lines := []string{fmt.Sprintf("@%s{%s,", entryType, key)}
	lines = append(lines, fmt.Sprintf("  title={%s},", p.Title))
	lines = append(lines, fmt.Sprintf("  author={%s},", author))
	if p.Year != 0 {
		lines = append(lines, fmt.Sprintf("  year={%d},", p.Year))
	}

	switch entryType {
	case "article":
		if p.Journal != "" {
			lines = append(lines, fmt.Sprintf("  journal={%s},", p.Journal))
		} else if p.Venue != "" {
			lines = append(lines, fmt.Sprintf("  journal={%s},", p.Venue))
		}
		if p.Volume != "" {
			lines = append(lines, fmt.Sprintf("  volume={%s},", p.Volume))
		}
		if p.Pages != "" {
			lines = append(lines, fmt.Sprintf("  pages={%s},", p.Pages))
		}
	case "inproceedings":
		if p.Conference != "" {
			lines = append(lines, fmt.Sprintf("  booktitle={%s},", p.Conference))
		} else if p.Venue != "" {
			lines = append(lines, fmt.Sprintf("  booktitle={%s},", p.Venue))
		}
		if p.Pages != "" {
			lines = append(lines, fmt.Sprintf("  pages={%s},", p.Pages))
		}
	case "misc":
		if p.ArxivID != "" {
			lines = append(lines, fmt.Sprintf("  note={arXiv preprint arXiv:%s},", p.ArxivID))
		}
	}

	if p.DOI != "" {
		lines = append(lines, fmt.Sprintf("  doi={%s},", p.DOI))
	}
	if p.URL != "" {
		lines = append(lines, fmt.Sprintf("  url={%s},", p.URL))
	}

	// No trailing comma on the final field.
	last := lines[len(lines)-1]
	lines[len(lines)-1] = strings.TrimSuffix(last, ",")

	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

func (p *PaperRecord) bibtexEntryType() string {
	if p.Journal != "" {
		return "article"
	}
	if p.Conference != "" {
		return "inproceedings"
	}
	venueLower := strings.ToLower(p.Venue)
	for _, marker := range venueProceedingsMarkers {
		if strings.Contains(venueLower, marker) {
			return "inproceedings"
		}
	}
	if p.ArxivID != "" {
		return "misc"
	}
	return "article"
}
