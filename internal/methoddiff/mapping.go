package methoddiff

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

const mappingKey = "activity_to_sector_mapping"

// MappingDiff is one entry in the sector-mapping file comparison.
type MappingDiff struct {
	Name           string   `yaml:"mapping_name"`
	Where          string   `yaml:"where"` // "both", "only in baseline", "only in test"
	Path           string   `yaml:"path,omitempty"`
	Summary        string   `yaml:"summary"`
	AddedSectors   []string `yaml:"added_sectors,omitempty"`
	RemovedSectors []string `yaml:"removed_sectors,omitempty"`
}

// CollectSectorMappingNames walks a resolved config and returns every
// activity_to_sector_mapping value, sorted.
func CollectSectorMappingNames(config map[string]any) []string {
	seen := map[string]struct{}{}
	collectMappingNames(config, seen)

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectMappingNames(v any, seen map[string]struct{}) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	for key, val := range m {
		if key == mappingKey {
			if s, ok := val.(string); ok {
				seen[s] = struct{}{}
			}
			continue
		}
		collectMappingNames(val, seen)
	}
}

// CollectSectorMappingsBySource returns source name -> mapping name for every
// source under source_names that declares a mapping, recursing into nested
// source_names blocks.
func CollectSectorMappingsBySource(config map[string]any) map[string]string {
	out := map[string]string{}
	collectMappingsBySource(config, out)
	return out
}

func collectMappingsBySource(v any, out map[string]string) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	sources, ok := m["source_names"].(map[string]any)
	if !ok {
		return
	}
	for name, sc := range sources {
		scm, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		if mn, ok := scm[mappingKey].(string); ok {
			out[name] = mn
		}
		collectMappingsBySource(scm, out)
	}
}

// ResolveCrosswalkPath maps a mapping name to its crosswalk CSV path.
func ResolveCrosswalkPath(crosswalkDir, name string) string {
	return filepath.Join(crosswalkDir, "NAICS_Crosswalk_"+name+".csv")
}

// DiffSectorMappings compares the sector-mapping files referenced by two
// resolved configs: names present on one side only, missing files, and, when a
// source switched mapping names, the sector-code row-set delta between the old
// and new files.
func DiffSectorMappings(crosswalkDir string, baseline, test map[string]any) ([]MappingDiff, error) {
	namesBaseline := CollectSectorMappingNames(baseline)
	namesTest := CollectSectorMappingNames(test)

	baseSet := stringSet(namesBaseline)
	testSet := stringSet(namesTest)

	union := map[string]struct{}{}
	for _, n := range namesBaseline {
		union[n] = struct{}{}
	}
	for _, n := range namesTest {
		union[n] = struct{}{}
	}
	sorted := make([]string, 0, len(union))
	for n := range union {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var report []MappingDiff
	for _, name := range sorted {
		_, inBaseline := baseSet[name]
		_, inTest := testSet[name]

		switch {
		case !inBaseline:
			report = append(report, MappingDiff{
				Name:    name,
				Where:   "only in test",
				Summary: "mapping only in test config",
			})
		case !inTest:
			report = append(report, MappingDiff{
				Name:    name,
				Where:   "only in baseline",
				Summary: "mapping only in baseline config",
			})
		default:
			path := ResolveCrosswalkPath(crosswalkDir, name)
			sectors, err := readMappingSectors(path)
			if err != nil {
				report = append(report, MappingDiff{
					Name:    name,
					Where:   "both",
					Summary: "missing file",
				})
				continue
			}
			report = append(report, MappingDiff{
				Name:    name,
				Where:   "both",
				Path:    path,
				Summary: fmt.Sprintf("%d sector rows (same mapping file for both)", len(sectors)),
			})
		}
	}

	// A source that switched mapping names is the real edit case: diff the
	// two files' row-sets keyed on sector code.
	bySourceBase := CollectSectorMappingsBySource(baseline)
	bySourceTest := CollectSectorMappingsBySource(test)
	var switched []string
	for source, baseName := range bySourceBase {
		if testName, ok := bySourceTest[source]; ok && testName != baseName {
			switched = append(switched, source)
		}
	}
	sort.Strings(switched)

	for _, source := range switched {
		baseName := bySourceBase[source]
		testName := bySourceTest[source]
		added, removed, err := DiffMappingRows(
			ResolveCrosswalkPath(crosswalkDir, baseName),
			ResolveCrosswalkPath(crosswalkDir, testName),
		)
		if err != nil {
			return nil, eris.Wrapf(err, "methoddiff: diff mappings for source %s", source)
		}
		report = append(report, MappingDiff{
			Name:           fmt.Sprintf("%s -> %s", baseName, testName),
			Where:          "both",
			Summary:        fmt.Sprintf("source %s switched mapping: %d sectors added, %d removed", source, len(added), len(removed)),
			AddedSectors:   added,
			RemovedSectors: removed,
		})
	}

	return report, nil
}

// DiffMappingRows compares two mapping files' row-sets keyed on sector code.
// Returns sector codes only in the test file and only in the baseline file.
func DiffMappingRows(baselinePath, testPath string) (added, removed []string, err error) {
	baseSectors, err := readMappingSectors(baselinePath)
	if err != nil {
		return nil, nil, err
	}
	testSectors, err := readMappingSectors(testPath)
	if err != nil {
		return nil, nil, err
	}

	for s := range testSectors {
		if _, ok := baseSectors[s]; !ok {
			added = append(added, s)
		}
	}
	for s := range baseSectors {
		if _, ok := testSectors[s]; !ok {
			removed = append(removed, s)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed, nil
}

// readMappingSectors reads the Sector column of a crosswalk CSV into a set.
func readMappingSectors(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "methoddiff: open mapping %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "methoddiff: read mapping header %s", path)
	}
	sectorCol := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "sector") {
			sectorCol = i
			break
		}
	}
	if sectorCol < 0 {
		return nil, eris.Errorf("methoddiff: mapping %s has no Sector column", path)
	}

	sectors := map[string]struct{}{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "methoddiff: read mapping %s", path)
		}
		if sectorCol >= len(record) {
			continue
		}
		s := strings.TrimSpace(record[sectorCol])
		if s != "" {
			sectors[s] = struct{}{}
		}
	}
	return sectors, nil
}

func stringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}
