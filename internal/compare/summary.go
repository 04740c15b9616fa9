package compare

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
)

// SummaryFile is the conventional summary filename inside a report directory.
const SummaryFile = "comparison_summary.csv"

var summaryHeader = []string{
	"fbs_slice", "emissions_source", "gas",
	"fbs_total", "registry_total", "abs_diff", "rel_diff",
	"compared", "reason",
}

// WriteSummary writes the batch summary CSV, overwriting any previous run.
// Failed rows keep their identifiers and reason with empty numeric cells.
func WriteSummary(path string, summary Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "compare: create summary %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(summaryHeader); err != nil {
		return eris.Wrapf(err, "compare: write summary header %s", path)
	}

	for _, row := range summary.Rows {
		record := []string{row.Slice, row.Source, row.Gas, "", "", "", "", strconv.FormatBool(row.Compared), row.Reason}
		if row.Compared {
			record[3] = formatFloat(row.FBSTotal)
			record[4] = formatFloat(row.RegistryTotal)
			record[5] = formatFloat(row.AbsDiff)
			if row.RelDiff != nil {
				record[6] = formatFloat(*row.RelDiff)
			}
		}
		if err := w.Write(record); err != nil {
			return eris.Wrapf(err, "compare: write summary row %s", path)
		}
	}

	w.Flush()
	return eris.Wrapf(w.Error(), "compare: flush summary %s", path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
