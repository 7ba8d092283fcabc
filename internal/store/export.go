// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"io"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview/pkg/types"
)

// yamlSnapshot is the export file layout.
type yamlSnapshot struct {
	ExportedAt time.Time           `yaml:"exported_at"`
	Count      int                 `yaml:"count"`
	Papers     []types.PaperRecord `yaml:"papers"`
}

// ExportBibTeX writes one BibTeX entry per paper, sorted by ID so output
// is stable across runs.
func (s *Store) ExportBibTeX(w io.Writer) error {
	for _, p := range sortedByID(s.merged()) {
		if _, err := fmt.Fprintf(w, "%s\n\n", p.BibTeX()); err != nil {
			return fmt.Errorf("writing BibTeX: %w", err)
		}
	}
	return nil
}

// ExportYAML writes a full-store snapshot as YAML, sorted by ID.
func (s *Store) ExportYAML(w io.Writer) error {
	papers := sortedByID(s.merged())
	snap := yamlSnapshot{
		ExportedAt: time.Now().UTC(),
		Count:      len(papers),
		Papers:     papers,
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding YAML snapshot: %w", err)
	}
	return nil
}

func sortedByID(papers []types.PaperRecord) []types.PaperRecord {
	sort.Slice(papers, func(i, j int) bool { return papers[i].ID < papers[j].ID })
	return papers
}
