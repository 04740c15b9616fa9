package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ceda-group/align-cli/internal/mapping"
	"github.com/ceda-group/align-cli/internal/method"
	"github.com/ceda-group/align-cli/internal/overlap"
	"github.com/ceda-group/align-cli/internal/registry"
)

var (
	overlapMethod string
	overlapOut    string
)

var overlapCmd = &cobra.Command{
	Use:   "overlap",
	Short: "Generate the FBS slice vs registry source overlap report",
	Long: `Enumerates every slice of the method and every registry source, pairs them
on shared GHGI tables, and classifies each candidate by activity-label
overlap. Writes fbs_slices.csv, registry_sources.csv, and overlap_report.csv
for human curation into the mapping file.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		methodName := overlapMethod
		if methodName == "" {
			methodName = cfg.Method.Default
		}
		outDir := overlapOut
		if outDir == "" {
			outDir = cfg.Paths.OutputDir
		}

		// The method config and the registry index are independent inputs.
		var slices []overlap.Slice
		var sources []overlap.Source

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			loader := &method.Loader{TransformDir: cfg.Paths.TransformDir}
			resolved, err := loader.Resolve(methodName)
			if err != nil {
				return eris.Wrapf(err, "overlap: resolve method %s", methodName)
			}
			slices = overlap.ExtractSlices(methodName, resolved)
			return nil
		})
		g.Go(func() error {
			loader := &registry.CSVLoader{Path: cfg.Registry.Index, Dataset: cfg.Registry.Dataset}
			var err error
			sources, err = loader.Sources(gCtx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		// Already-accepted pairs from a previous curation round are promoted
		// in the report; the mapping file itself is never written here.
		mappingPath := filepath.Join(outDir, mapping.FileName)
		accepted := map[overlap.PairKey]bool{}
		if _, err := os.Stat(mappingPath); err == nil {
			entries, err := mapping.Load(mappingPath)
			if err != nil {
				return err
			}
			for _, e := range entries {
				accepted[overlap.PairKey{Slice: e.Slice, Source: e.Source}] = true
			}
		}

		candidates := overlap.BuildReport(slices, sources, accepted)
		if err := overlap.WriteReport(outDir, slices, sources, candidates); err != nil {
			return err
		}
		if err := mapping.WriteStub(mappingPath); err != nil {
			return err
		}

		zap.L().Info("overlap: report written",
			zap.String("method", methodName),
			zap.String("dir", outDir),
			zap.Int("fbs_slices", len(slices)),
			zap.Int("registry_sources", len(sources)),
			zap.Int("candidates", len(candidates)),
		)
		return nil
	},
}

func init() {
	overlapCmd.Flags().StringVar(&overlapMethod, "method", "", "FBS method name (default from config)")
	overlapCmd.Flags().StringVar(&overlapOut, "out", "", "output directory (default from config)")
	rootCmd.AddCommand(overlapCmd)
}
