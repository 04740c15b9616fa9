package compare

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ceda-group/align-cli/internal/mapping"
)

// SliceProvider reconstructs one FBS slice as a gas-by-sector matrix. The FBS
// method engine is external; HarmonizedFBS adapts its CSV export.
type SliceProvider interface {
	SliceMatrix(ctx context.Context, sliceID string) (Matrix, error)
}

// SourceProvider serves one registry source's sector vector. The registry
// derivation is external; RegistryMatrix adapts its CSV export.
type SourceProvider interface {
	SourceVector(ctx context.Context, sourceID string) (Vector, error)
}

// Row is one comparison outcome, successful or not.
type Row struct {
	Slice         string
	Source        string
	Gas           string
	FBSTotal      float64
	RegistryTotal float64
	AbsDiff       float64
	RelDiff       *float64 // nil when the registry total is zero
	Compared      bool
	Reason        string // failure reason when not compared
}

// Summary aggregates a batch run. Failed > 0 is the partial-failure signal
// callers surface through their exit code.
type Summary struct {
	Rows      []Row
	Succeeded int
	Failed    int
}

// Runner executes the batch comparison over mapping entries.
type Runner struct {
	Slices   SliceProvider
	Registry SourceProvider
	Gases    map[string]string // emissions_source -> gas, from the registry index
}

// Run compares every mapping entry in order, duplicates included. Entries are
// independently meaningful, so a failed reconstruction is recorded on its row
// and the batch continues; only that makes a hand-maintained mapping file
// usable against evolving method definitions.
func (r *Runner) Run(ctx context.Context, entries []mapping.Entry) (Summary, error) {
	summary := Summary{Rows: make([]Row, 0, len(entries))}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return summary, eris.Wrap(err, "compare: batch cancelled")
		}

		row, err := r.compareOne(ctx, e)
		if err != nil {
			var rerr *SliceReconstructionError
			if !errors.As(err, &rerr) {
				return summary, err
			}
			zap.L().Warn("compare: pair skipped",
				zap.String("fbs_slice", e.Slice),
				zap.String("emissions_source", e.Source),
				zap.String("reason", rerr.Reason),
			)
			summary.Rows = append(summary.Rows, Row{
				Slice:    e.Slice,
				Source:   e.Source,
				Gas:      e.Gas,
				Compared: false,
				Reason:   rerr.Reason,
			})
			summary.Failed++
			continue
		}

		summary.Rows = append(summary.Rows, row)
		summary.Succeeded++
	}
	return summary, nil
}

func (r *Runner) compareOne(ctx context.Context, e mapping.Entry) (Row, error) {
	gas, ok := r.Gases[e.Source]
	if !ok {
		return Row{}, &SliceReconstructionError{
			Slice:  e.Slice,
			Source: e.Source,
			Reason: "emissions source not in registry index",
		}
	}

	sliceMatrix, err := r.Slices.SliceMatrix(ctx, e.Slice)
	if err != nil {
		return Row{}, tagPair(err, e)
	}
	sourceVec, err := r.Registry.SourceVector(ctx, e.Source)
	if err != nil {
		return Row{}, tagPair(err, e)
	}

	fbsTotal := sliceMatrix.GasTotal(gas)
	registryTotal := sourceVec.Total()

	row := Row{
		Slice:         e.Slice,
		Source:        e.Source,
		Gas:           gas,
		FBSTotal:      fbsTotal,
		RegistryTotal: registryTotal,
		AbsDiff:       fbsTotal - registryTotal,
		Compared:      true,
	}
	if registryTotal != 0 {
		rel := fbsTotal/registryTotal - 1.0
		row.RelDiff = &rel
	}
	return row, nil
}

// tagPair fills in the pair identifiers on a reconstruction error raised by a
// provider that only knows its own side.
func tagPair(err error, e mapping.Entry) error {
	var rerr *SliceReconstructionError
	if errors.As(err, &rerr) {
		if rerr.Slice == "" {
			rerr.Slice = e.Slice
		}
		if rerr.Source == "" {
			rerr.Source = e.Source
		}
	}
	return err
}
