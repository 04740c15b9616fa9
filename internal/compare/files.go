package compare

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// HarmonizedFBS is a harmonized FBS output in long form, loaded once per run
// from the external FBS engine's export: columns Gas, Sector, MetaSources,
// CO2e. MetaSources carries the full slice ID (source.activity_set), which is
// what makes per-slice comparison possible.
type HarmonizedFBS struct {
	rows []fbsRow
}

type fbsRow struct {
	Gas     string
	Sector  string
	SliceID string
	Amount  float64
}

// LoadHarmonizedFBS reads the harmonized long CSV.
func LoadHarmonizedFBS(path string) (*HarmonizedFBS, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "compare: open harmonized fbs %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "compare: read harmonized header %s", path)
	}
	cols := map[string]int{}
	for i, col := range head {
		cols[strings.TrimSpace(strings.ToLower(col))] = i
	}
	need := 0
	for _, required := range []string{"gas", "sector", "metasources", "co2e"} {
		i, ok := cols[required]
		if !ok {
			return nil, eris.Errorf("compare: harmonized fbs %s missing %s column", path, required)
		}
		if i+1 > need {
			need = i + 1
		}
	}

	fbs := &HarmonizedFBS{}
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "compare: read harmonized fbs %s", path)
		}
		line++
		if len(record) < need {
			return nil, eris.Errorf("compare: harmonized fbs %s line %d has %d fields, expected %d", path, line, len(record), need)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(record[cols["co2e"]]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "compare: parse co2e in %s", path)
		}
		fbs.rows = append(fbs.rows, fbsRow{
			Gas:     strings.TrimSpace(record[cols["gas"]]),
			Sector:  strings.TrimSpace(record[cols["sector"]]),
			SliceID: strings.TrimSpace(record[cols["metasources"]]),
			Amount:  amount,
		})
	}
	return fbs, nil
}

// SliceMatrix filters the long table to one slice ID and pivots it to a
// gas-by-sector matrix. An unknown slice is a reconstruction failure: the
// mapping file has gone stale relative to the method.
func (h *HarmonizedFBS) SliceMatrix(ctx context.Context, sliceID string) (Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "compare: slice matrix cancelled")
	}

	m := Matrix{}
	found := false
	for _, row := range h.rows {
		if row.SliceID != sliceID {
			continue
		}
		found = true
		m.Add(row.Gas, row.Sector, row.Amount)
	}
	if !found {
		return nil, &SliceReconstructionError{
			Slice:  sliceID,
			Reason: "fbs has no rows for slice",
		}
	}
	return m, nil
}

// SliceIDs returns the distinct slice IDs present, sorted.
func (h *HarmonizedFBS) SliceIDs() []string {
	seen := map[string]struct{}{}
	for _, row := range h.rows {
		seen[row.SliceID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RegistryMatrix is the registry's emissions matrix: one row per emissions
// source, one column per sector code.
type RegistryMatrix struct {
	vectors map[string]Vector
}

// LoadRegistryMatrix reads the registry matrix CSV. The first column is
// emissions_source; every remaining header names a sector code.
func LoadRegistryMatrix(path string) (*RegistryMatrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "compare: open registry matrix %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "compare: read registry matrix header %s", path)
	}
	if len(head) < 2 || strings.TrimSpace(strings.ToLower(head[0])) != "emissions_source" {
		return nil, eris.Errorf("compare: registry matrix %s must start with emissions_source column", path)
	}
	sectors := make([]string, len(head))
	for i := 1; i < len(head); i++ {
		sectors[i] = strings.TrimSpace(head[i])
	}

	rm := &RegistryMatrix{vectors: map[string]Vector{}}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "compare: read registry matrix %s", path)
		}
		id := strings.TrimSpace(record[0])
		if id == "" {
			continue
		}
		vec := Vector{}
		for i := 1; i < len(record) && i < len(head); i++ {
			cellVal := strings.TrimSpace(record[i])
			if cellVal == "" {
				continue
			}
			amount, err := strconv.ParseFloat(cellVal, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "compare: parse amount for %s in %s", id, path)
			}
			vec[sectors[i]] = amount
		}
		rm.vectors[id] = vec
	}
	return rm, nil
}

// SourceVector returns one emissions source's sector vector.
func (rm *RegistryMatrix) SourceVector(ctx context.Context, sourceID string) (Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "compare: source vector cancelled")
	}
	vec, ok := rm.vectors[sourceID]
	if !ok {
		return nil, &SliceReconstructionError{
			Source: sourceID,
			Reason: "registry has no row for source",
		}
	}
	return vec, nil
}
