package single

import (
	"context"

	"github.com/ceda-group/align-cli/internal/compare"
	"github.com/ceda-group/align-cli/internal/method"
	"github.com/ceda-group/align-cli/internal/overlap"
)

// FileEngine serves single-slice runs from a previously harmonized FBS export
// instead of invoking the external engine. It reads the scratch method back,
// enumerates its slices, and merges their matrices from the export.
type FileEngine struct {
	FBS *compare.HarmonizedFBS
}

func (e *FileEngine) Generate(ctx context.Context, methodName, configDir string) (compare.Matrix, error) {
	loader := &method.Loader{TransformDir: configDir}
	config, err := loader.Resolve(methodName)
	if err != nil {
		return nil, err
	}

	merged := compare.Matrix{}
	for _, s := range overlap.ExtractSlices(methodName, config) {
		m, err := e.FBS.SliceMatrix(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		for gas, vec := range m {
			for sector, amount := range vec {
				merged.Add(gas, sector, amount)
			}
		}
	}
	return merged, nil
}
