package overlap

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Normalize folds an activity label for matching: trailing "#" comments are
// stripped, case is folded, "_" and "-" become spaces, and runs of whitespace
// collapse. "Electricity Transmission" and "electricity_transmission"
// normalize identically.
func Normalize(label string) string {
	s := strings.SplitN(label, "#", 2)[0]
	s = cases.Fold().String(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// activitiesOverlap reports whether any normalized slice activity and source
// activity match, by equality or substring containment either way.
func activitiesOverlap(sliceActivities, sourceActivities []string) bool {
	if len(sliceActivities) == 0 || len(sourceActivities) == 0 {
		return false
	}
	for _, sa := range sourceActivities {
		san := Normalize(sa)
		if san == "" {
			continue
		}
		for _, fa := range sliceActivities {
			fan := Normalize(fa)
			if fan == "" {
				continue
			}
			if strings.Contains(fan, san) || strings.Contains(san, fan) {
				return true
			}
		}
	}
	return false
}

var qualityRank = map[MatchQuality]int{
	MatchMapping:        0,
	MatchActivityAndGas: 1,
	MatchGasOnly:        2,
}

// BuildReport produces exactly one candidate per (slice, source) pair sharing
// a join key: the slice's source name appears among the registry source's
// table identifiers. No pair is dropped, however weak; a human discards them
// during curation. Pairs in accepted are promoted to mapping quality.
//
// Candidates sort by quality tier (mapping, activity_and_gas, gas_only), then
// slice ID, then source ID, so output is deterministic across runs.
func BuildReport(slices []Slice, sources []Source, accepted map[PairKey]bool) []Candidate {
	var candidates []Candidate
	seen := map[PairKey]bool{}

	for _, s := range slices {
		for _, src := range sources {
			if !tableMatches(s.SourceName, src.Tables) {
				continue
			}
			key := PairKey{Slice: s.ID, Source: src.ID}
			if seen[key] {
				continue
			}
			seen[key] = true

			quality := MatchGasOnly
			if activitiesOverlap(s.PrimaryActivities, src.Activities) {
				quality = MatchActivityAndGas
			}
			if accepted[key] {
				quality = MatchMapping
			}

			candidates = append(candidates, Candidate{
				SliceID:          s.ID,
				SourceID:         src.ID,
				Gas:              src.Gas,
				Table:            s.SourceName,
				Quality:          quality,
				SliceActivities:  s.PrimaryActivities,
				SourceActivities: src.Activities,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if qualityRank[ci.Quality] != qualityRank[cj.Quality] {
			return qualityRank[ci.Quality] < qualityRank[cj.Quality]
		}
		if ci.SliceID != cj.SliceID {
			return ci.SliceID < cj.SliceID
		}
		return ci.SourceID < cj.SourceID
	})
	return candidates
}

func tableMatches(sourceName string, tables []string) bool {
	for _, t := range tables {
		if t == sourceName {
			return true
		}
	}
	return false
}
