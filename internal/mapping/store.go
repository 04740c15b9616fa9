// Package mapping reads and stubs the curated slice-to-source mapping file.
//
// The mapping CSV is the single human-controlled boundary between exploratory
// matching and batch comparison: the matcher and the comparator both read it,
// neither writes entries to it.
package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileName is the conventional mapping filename inside a report directory.
const FileName = "fbs_slice_to_registry_mapping.csv"

var header = []string{"fbs_slice", "emissions_source", "gas", "notes"}

// Entry is one accepted (slice, source) pair. Gas and Notes are curator
// annotations carried through to the comparison summary.
type Entry struct {
	Slice  string
	Source string
	Gas    string
	Notes  string
}

// MalformedMappingError means the mapping CSV is unreadable or missing a
// required column. It aborts the whole invocation; a broken mapping file is a
// setup mistake, not a per-entry condition.
type MalformedMappingError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedMappingError) Error() string {
	return fmt.Sprintf("mapping: %s: %s", e.Path, e.Reason)
}

func (e *MalformedMappingError) Unwrap() error { return e.Err }

// Load reads the mapping file. Rows with a blank slice or source are dropped
// (the curation stub is header-only); duplicate pairs are kept as-is and
// produce duplicate comparison rows downstream.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MalformedMappingError{Path: path, Reason: "unreadable", Err: err}
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return nil, &MalformedMappingError{Path: path, Reason: "missing header row", Err: err}
	}

	cols := map[string]int{}
	for i, col := range head {
		cols[strings.TrimSpace(strings.ToLower(col))] = i
	}
	sliceCol, ok := cols["fbs_slice"]
	if !ok {
		return nil, &MalformedMappingError{Path: path, Reason: "missing fbs_slice column"}
	}
	sourceCol, ok := cols["emissions_source"]
	if !ok {
		return nil, &MalformedMappingError{Path: path, Reason: "missing emissions_source column"}
	}
	gasCol, hasGas := cols["gas"]
	notesCol, hasNotes := cols["notes"]

	var entries []Entry
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedMappingError{Path: path, Reason: "unreadable row", Err: err}
		}

		e := Entry{
			Slice:  field(record, sliceCol),
			Source: field(record, sourceCol),
		}
		if e.Slice == "" || e.Source == "" {
			continue
		}
		if hasGas {
			e.Gas = field(record, gasCol)
		}
		if hasNotes {
			e.Notes = field(record, notesCol)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteStub writes the header-only mapping file for the curator to fill in.
// It never overwrites an existing file.
func WriteStub(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return &MalformedMappingError{Path: path, Reason: "cannot create stub", Err: err}
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return &MalformedMappingError{Path: path, Reason: "cannot write stub header", Err: err}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &MalformedMappingError{Path: path, Reason: "cannot flush stub", Err: err}
	}
	return nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
