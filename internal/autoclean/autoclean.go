// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package autoclean reconciles a store partition's pdfs/ and metadata/
// directories: PDFs without metadata get a metadata file manufactured from
// the document text, and metadata files whose PDF is gone are removed.
package autoclean

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/pdiddy/litreview/internal/enrich"
	"github.com/pdiddy/litreview/pkg/types"
)

const (
	maxPagesToScan = 5
	maxTitleLen    = 300
	maxAbstractLen = 1500
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Summary reports what one Clean pass did.
type Summary struct {
	Created int
	Removed int
	Failed  int
}

// metadataFile mirrors the store's on-disk layout so manufactured files
// are indistinguishable from stored ones.
type metadataFile struct {
	types.PaperRecord
	BibTeX string `json:"bibtex"`
}

// Clean reconciles the partition rooted at dir. Progress and warnings go
// to w. Failures on individual files are counted, not fatal.
func Clean(dir string, w io.Writer) (Summary, error) {
	if w == nil {
		w = io.Discard
	}
	var sum Summary

	pdfDir := filepath.Join(dir, "pdfs")
	metaDir := filepath.Join(dir, "metadata")

	pdfs, err := stems(pdfDir, ".pdf")
	if err != nil {
		return sum, err
	}
	metas, err := stems(metaDir, ".json")
	if err != nil {
		return sum, err
	}

	for stem := range pdfs {
		if metas[stem] {
			continue
		}
		if err := createMetadata(pdfDir, metaDir, stem); err != nil {
			fmt.Fprintf(w, "warning: could not create metadata for %s.pdf: %v\n", stem, err)
			sum.Failed++
			continue
		}
		fmt.Fprintf(w, "created metadata for %s.pdf\n", stem)
		sum.Created++
	}

	for stem := range metas {
		if pdfs[stem] {
			continue
		}
		path := filepath.Join(metaDir, stem+".json")
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(w, "warning: could not remove orphan metadata %s.json: %v\n", stem, err)
			sum.Failed++
			continue
		}
		fmt.Fprintf(w, "removed orphan metadata %s.json\n", stem)
		sum.Removed++
	}

	return sum, nil
}

// stems lists the file stems with the given extension in dir. A missing
// directory is treated as empty.
func stems(dir, ext string) (map[string]bool, error) {
	out := make(map[string]bool)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ext) {
			continue
		}
		out[strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))] = true
	}
	return out, nil
}

// createMetadata manufactures a metadata file for the PDF with the given
// stem, keeping the stem so the pair stays co-named.
func createMetadata(pdfDir, metaDir, stem string) error {
	pdfPath := filepath.Join(pdfDir, stem+".pdf")

	text, err := extractText(pdfPath)
	if err != nil {
		// A paper with a stem-derived title beats no metadata at all.
		text = ""
	}

	p := types.PaperRecord{
		ID:        "auto_" + stem,
		Title:     inferTitle(text, stem),
		Abstract:  inferAbstract(text),
		Year:      inferYear(text),
		PDFPath:   pdfPath,
		Source:    "autoclean",
		AddedDate: time.Now().UTC(),
	}
	p = enrich.Enrich(p)

	meta := metadataFile{PaperRecord: p, BibTeX: p.BibTeX()}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(filepath.Join(metaDir, stem+".json"), data, 0o644)
}

// extractText pulls plain text from the first pages of the PDF.
func extractText(path string) (string, error) {
	f, r, err := ledongthuc.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	pages := r.NumPage()
	if pages > maxPagesToScan {
		pages = maxPagesToScan
	}
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// inferTitle takes the first substantial line of the text, falling back to
// the file stem with underscores restored to spaces.
func inferTitle(text, stem string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= 10 {
			if len(line) > maxTitleLen {
				line = line[:maxTitleLen]
			}
			return line
		}
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(stem, "_", " ")), " ")
}

// inferAbstract keeps the leading text as a rough abstract.
func inferAbstract(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > maxAbstractLen {
		text = text[:maxAbstractLen]
	}
	return text
}

// inferYear returns the first plausible publication year in the text.
func inferYear(text string) int {
	if m := yearPattern.FindString(text); m != "" {
		if year, err := strconv.Atoi(m); err == nil {
			return year
		}
	}
	return 0
}
