// Package registry loads allocated-emissions registry data. The registry
// itself is maintained by an external system; this package reads the flat
// index and matrix exports it publishes.
package registry

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ceda-group/align-cli/internal/overlap"
)

// Loader enumerates registry sources for overlap matching.
type Loader interface {
	Sources(ctx context.Context) ([]overlap.Source, error)
}

// CSVLoader reads the registry index CSV: one row per emissions source with
// columns emissions_source, gas, activities, tables. In-cell lists are pipe
// separated. A source with no activity labels is legal; it can only ever be a
// gas-only candidate.
type CSVLoader struct {
	Path    string
	Dataset string
}

func (l *CSVLoader) Sources(ctx context.Context) ([]overlap.Source, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: open index %s", l.Path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read index header %s", l.Path)
	}
	cols := map[string]int{}
	for i, col := range head {
		cols[strings.TrimSpace(strings.ToLower(col))] = i
	}
	for _, required := range []string{"emissions_source", "gas"} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("registry: index %s missing %s column", l.Path, required)
		}
	}

	var sources []overlap.Source
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "registry: load cancelled")
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "registry: read index %s", l.Path)
		}

		id := cell(record, cols, "emissions_source")
		if id == "" {
			continue
		}
		sources = append(sources, overlap.Source{
			ID:         id,
			Gas:        cell(record, cols, "gas"),
			Tables:     pipeSplit(cell(record, cols, "tables")),
			Activities: pipeSplit(cell(record, cols, "activities")),
			Dataset:    l.Dataset,
		})
	}
	return sources, nil
}

// GasIndex maps emissions-source ID to its gas, for comparison summaries.
func GasIndex(sources []overlap.Source) map[string]string {
	out := make(map[string]string, len(sources))
	for _, s := range sources {
		out[s.ID] = s.Gas
	}
	return out
}

func cell(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func pipeSplit(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
