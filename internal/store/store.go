// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store is the file-based system of record for papers. It keeps
// two partitions on disk, internal (curated) and external (retrieved), each
// with a pdfs/ and a metadata/ directory. A paper is one JSON metadata file
// plus an optional co-named PDF, both under a ConfYY_Short_Title slug. All
// lookups go through in-memory indices rebuilt from the metadata files.
package store

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/litreview/pkg/types"
)

// Partition names the two sides of the store.
type Partition string

const (
	Internal Partition = "internal"
	External Partition = "external"
)

// metadataFile is the on-disk JSON layout: the record plus a rendered
// BibTeX entry so the file is useful on its own.
type metadataFile struct {
	types.PaperRecord
	BibTeX string `json:"bibtex"`
}

// Query selects papers from the store. Zero-valued fields are not applied.
// Filters combine as an AND across fields; within the Keywords and Topics
// lists any one supplied term is enough to match.
type Query struct {
	Text     string
	Keywords []string
	Topics   []string
	YearMin  int
	YearMax  int
	Limit    int
}

// Stats summarizes store contents.
type Stats struct {
	Total    int
	Internal int
	External int
	WithPDF  int
}

// Store owns the two partition indices. Internal entries shadow external
// entries with the same ID.
type Store struct {
	internalDir string
	externalDir string

	internal map[string]types.PaperRecord
	external map[string]types.PaperRecord

	w io.Writer
}

// Open creates the partition directory trees if needed and loads both
// indices from disk. Progress and warnings go to w.
func Open(cfg types.StoreConfig, w io.Writer) (*Store, error) {
	if w == nil {
		w = io.Discard
	}
	s := &Store{
		internalDir: cfg.InternalDir,
		externalDir: cfg.ExternalDir,
		internal:    make(map[string]types.PaperRecord),
		external:    make(map[string]types.PaperRecord),
		w:           w,
	}
	for _, dir := range []string{cfg.InternalDir, cfg.ExternalDir} {
		for _, sub := range []string{"pdfs", "metadata"} {
			if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
				return nil, fmt.Errorf("creating store directory: %w", err)
			}
		}
	}
	if err := s.Rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rebuild reloads both partition indices from the metadata files on disk.
// Corrupt files are skipped with a warning so one bad file never takes the
// whole store down.
func (s *Store) Rebuild() error {
	for part, dir := range map[Partition]string{Internal: s.internalDir, External: s.externalDir} {
		index := make(map[string]types.PaperRecord)
		metaDir := filepath.Join(dir, "metadata")
		entries, err := os.ReadDir(metaDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading %s: %w", metaDir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			path := filepath.Join(metaDir, entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(s.w, "warning: skipping unreadable metadata %s: %v\n", entry.Name(), err)
				continue
			}
			var meta metadataFile
			if err := json.Unmarshal(data, &meta); err != nil {
				fmt.Fprintf(s.w, "warning: skipping corrupt metadata %s: %v\n", entry.Name(), err)
				continue
			}
			rec := meta.PaperRecord
			if rec.ID == "" {
				fmt.Fprintf(s.w, "warning: skipping metadata without paper_id: %s\n", entry.Name())
				continue
			}
			index[rec.ID] = rec
		}
		switch part {
		case Internal:
			s.internal = index
		case External:
			s.external = index
		}
	}
	return nil
}

// Exists reports whether a paper with id is in either partition.
func (s *Store) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Get returns the paper with id. Internal entries take precedence over
// external entries with the same ID.
func (s *Store) Get(id string) (types.PaperRecord, bool) {
	if p, ok := s.internal[id]; ok {
		return p, true
	}
	p, ok := s.external[id]
	return p, ok
}

// Add writes p to the given partition: a metadata JSON file and, when
// pdfData is non-empty, a co-named PDF. Papers without an ID get a stable
// content hash ID. Adding an ID that already exists anywhere in the store
// is a no-op returning the existing record.
func (s *Store) Add(p types.PaperRecord, pdfData []byte, part Partition) (types.PaperRecord, error) {
	if p.Title == "" {
		return types.PaperRecord{}, fmt.Errorf("paper must have a title")
	}
	if p.ID == "" {
		p.ID = hashID(p)
	}
	if existing, ok := s.Get(p.ID); ok {
		return existing, nil
	}
	if p.AddedDate.IsZero() {
		p.AddedDate = time.Now().UTC()
	}

	dir := s.externalDir
	if part == Internal {
		dir = s.internalDir
	}

	stem := slug(p)
	if len(pdfData) > 0 {
		pdfPath := filepath.Join(dir, "pdfs", stem+".pdf")
		if err := os.WriteFile(pdfPath, pdfData, 0o644); err != nil {
			return types.PaperRecord{}, fmt.Errorf("writing PDF: %w", err)
		}
		p.PDFPath = pdfPath
	}

	meta := metadataFile{PaperRecord: p, BibTeX: p.BibTeX()}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return types.PaperRecord{}, fmt.Errorf("marshaling metadata: %w", err)
	}
	metaPath := filepath.Join(dir, "metadata", stem+".json")
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return types.PaperRecord{}, fmt.Errorf("writing metadata: %w", err)
	}

	if part == Internal {
		s.internal[p.ID] = p
	} else {
		s.external[p.ID] = p
	}
	return p, nil
}

// Search returns papers matching q, sorted by (year desc, citations desc)
// and truncated to q.Limit when it is positive. All matches are collected
// before sorting so truncation never hides a better-ranked paper.
func (s *Store) Search(q Query) []types.PaperRecord {
	var out []types.PaperRecord
	for _, p := range s.merged() {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Citations > out[j].Citations
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// All returns every paper in the store, internal entries shadowing
// external ones, in no particular order.
func (s *Store) All() []types.PaperRecord {
	return s.merged()
}

// Statistics counts papers per partition. Shadowed external entries still
// count toward the external total.
func (s *Store) Statistics() Stats {
	st := Stats{Internal: len(s.internal), External: len(s.external)}
	st.Total = len(s.merged())
	for _, p := range s.merged() {
		if p.PDFPath != "" {
			st.WithPDF++
		}
	}
	return st
}

// ExternalDir returns the root of the external partition.
func (s *Store) ExternalDir() string {
	return s.externalDir
}

func (s *Store) merged() []types.PaperRecord {
	out := make([]types.PaperRecord, 0, len(s.internal)+len(s.external))
	for id, p := range s.external {
		if _, shadowed := s.internal[id]; shadowed {
			continue
		}
		out = append(out, p)
	}
	for _, p := range s.internal {
		out = append(out, p)
	}
	return out
}

// matches applies all non-zero query fields as an AND.
func matches(p types.PaperRecord, q Query) bool {
	if q.YearMin > 0 && p.Year < q.YearMin {
		return false
	}
	if q.YearMax > 0 && (p.Year == 0 || p.Year > q.YearMax) {
		return false
	}
	if len(q.Keywords) > 0 && !containsAnyTerm(p.Keywords, q.Keywords) {
		return false
	}
	if len(q.Topics) > 0 && !containsAnyTerm(p.Topics, q.Topics) {
		return false
	}
	if q.Text != "" {
		title := strings.ToLower(p.Title)
		abstract := strings.ToLower(p.Abstract)
		any := false
		for _, tok := range strings.Fields(strings.ToLower(q.Text)) {
			if strings.Contains(title, tok) || strings.Contains(abstract, tok) || keywordContains(p.Keywords, tok) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

// keywordContains reports whether tok appears as a substring of any keyword.
func keywordContains(keywords []string, tok string) bool {
	for _, kw := range keywords {
		if strings.Contains(strings.ToLower(kw), tok) {
			return true
		}
	}
	return false
}

// containsAnyTerm reports whether any query term appears in list.
func containsAnyTerm(list, terms []string) bool {
	for _, term := range terms {
		for _, s := range list {
			if strings.EqualFold(s, term) {
				return true
			}
		}
	}
	return false
}

// hashID derives a stable content ID from identifying fields. Sixteen hex
// characters keep it short enough for filenames while staying unique in
// practice.
func hashID(p types.PaperRecord) string {
	first := ""
	if len(p.Authors) > 0 {
		first = p.Authors[0]
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", p.Title, first, p.Year)))
	return fmt.Sprintf("%x", sum)[:16]
}
