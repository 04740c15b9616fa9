// Package overlap extracts FBS slices and registry sources and matches them
// into a candidate report for human curation.
package overlap

// Slice is one FBS source/activity-set combination from a resolved method.
// Slices are regenerated each run and never mutated.
type Slice struct {
	ID                string   // "<source>.<activity_set>", or the source name alone
	SourceName        string
	ActivitySet       string
	Method            string
	Flows             []string
	PrimaryActivities []string
}

// Source is one emissions source from the allocated-emissions registry,
// a snapshot of registry content at extraction time.
type Source struct {
	ID         string // emissions-source key, e.g. ch4_natural_gas_systems
	Gas        string
	Tables     []string // GHGI table identifiers the source draws from
	Activities []string // descriptive activity labels
	Dataset    string
}

// MatchQuality classifies a candidate pair by confidence.
type MatchQuality string

const (
	// MatchMapping marks pairs already accepted in the curated mapping file.
	MatchMapping MatchQuality = "mapping"
	// MatchActivityAndGas marks pairs whose activity labels overlap in
	// addition to the shared table/gas key.
	MatchActivityAndGas MatchQuality = "activity_and_gas"
	// MatchGasOnly marks pairs sharing only the coarse table/gas key.
	MatchGasOnly MatchQuality = "gas_only"
)

// Candidate is a derived (slice, source) pairing. It is never authoritative;
// the curated mapping file is.
type Candidate struct {
	SliceID          string
	SourceID         string
	Gas              string
	Table            string
	Quality          MatchQuality
	SliceActivities  []string
	SourceActivities []string
}

// PairKey identifies an accepted (slice, source) pair from the mapping file.
type PairKey struct {
	Slice  string
	Source string
}
