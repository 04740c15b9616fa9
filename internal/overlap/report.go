package overlap

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Output filenames under the report directory.
const (
	SlicesFile  = "fbs_slices.csv"
	SourcesFile = "registry_sources.csv"
	ReportFile  = "overlap_report.csv"
)

// WriteReport writes the three flat tables of an overlap run. Each run
// overwrites its own outputs; the curated mapping file is never touched here.
func WriteReport(dir string, slices []Slice, sources []Source, candidates []Candidate) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "overlap: create output dir %s", dir)
	}

	if err := writeCSV(filepath.Join(dir, SlicesFile),
		[]string{"fbs_slice", "source_name", "activity_set", "flows", "primary_activities"},
		len(slices), func(i int) []string {
			s := slices[i]
			return []string{s.ID, s.SourceName, s.ActivitySet, pipeJoin(s.Flows), pipeJoin(s.PrimaryActivities)}
		}); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(dir, SourcesFile),
		[]string{"emissions_source", "gas", "tables", "activities", "dataset"},
		len(sources), func(i int) []string {
			s := sources[i]
			return []string{s.ID, s.Gas, pipeJoin(s.Tables), pipeJoin(s.Activities), s.Dataset}
		}); err != nil {
		return err
	}

	return writeCSV(filepath.Join(dir, ReportFile),
		[]string{"fbs_slice", "emissions_source", "gas", "ghgi_table", "match_quality", "fbs_primary_activities", "registry_activities"},
		len(candidates), func(i int) []string {
			c := candidates[i]
			return []string{c.SliceID, c.SourceID, c.Gas, c.Table, string(c.Quality), pipeJoin(c.SliceActivities), pipeJoin(c.SourceActivities)}
		})
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "overlap: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "overlap: write header %s", path)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return eris.Wrapf(err, "overlap: write row %s", path)
		}
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "overlap: flush %s", path)
}

func pipeJoin(items []string) string {
	return strings.Join(items, "|")
}
