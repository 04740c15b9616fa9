package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ceda-group/align-cli/internal/compare"
	"github.com/ceda-group/align-cli/internal/mapping"
	"github.com/ceda-group/align-cli/internal/registry"
	"github.com/ceda-group/align-cli/internal/store"
)

var (
	compareMapping string
	compareOut     string
	compareMethod  string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Batch-compare curated slice/source pairs",
	Long: `Reads only the curated mapping file (never the overlap report), rebuilds
each FBS slice and registry source, and writes comparison_summary.csv. A pair
that can no longer be reconstructed is recorded as a failed row; the batch
always completes, and the command exits non-zero when any row failed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		startedAt := time.Now().UTC()

		outDir := compareOut
		if outDir == "" {
			outDir = cfg.Paths.OutputDir
		}
		mappingPath := compareMapping
		if mappingPath == "" {
			mappingPath = filepath.Join(outDir, mapping.FileName)
		}
		methodName := compareMethod
		if methodName == "" {
			methodName = cfg.Method.Default
		}

		if _, err := os.Stat(mappingPath); err != nil {
			return eris.Errorf("compare: mapping file not found: %s. Run `align-cli overlap` first, then add (fbs_slice, emissions_source) pairs to %s", mappingPath, mapping.FileName)
		}
		entries, err := mapping.Load(mappingPath)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return eris.Errorf("compare: mapping file %s has no accepted pairs yet", mappingPath)
		}

		regLoader := &registry.CSVLoader{Path: cfg.Registry.Index, Dataset: cfg.Registry.Dataset}
		sources, err := regLoader.Sources(ctx)
		if err != nil {
			return err
		}
		fbs, err := compare.LoadHarmonizedFBS(cfg.FBS.Harmonized)
		if err != nil {
			return err
		}
		regMatrix, err := compare.LoadRegistryMatrix(cfg.Registry.Matrix)
		if err != nil {
			return err
		}

		runner := &compare.Runner{
			Slices:   fbs,
			Registry: regMatrix,
			Gases:    registry.GasIndex(sources),
		}
		summary, err := runner.Run(ctx, entries)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return eris.Wrapf(err, "compare: create output dir %s", outDir)
		}
		summaryPath := filepath.Join(outDir, compare.SummaryFile)
		if err := compare.WriteSummary(summaryPath, summary); err != nil {
			return err
		}

		if cfg.Store.DatabaseURL != "" {
			runID, err := recordRun(cmd, methodName, mappingPath, startedAt, summary)
			if err != nil {
				return err
			}
			zap.L().Info("compare: run recorded", zap.String("run_id", runID))
		}

		zap.L().Info("compare: batch complete",
			zap.String("summary", summaryPath),
			zap.Int("total", len(summary.Rows)),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", summary.Failed),
		)

		if summary.Failed > 0 {
			return eris.Errorf("compare: %d of %d pairs failed; see %s", summary.Failed, len(summary.Rows), summaryPath)
		}
		return nil
	},
}

func recordRun(cmd *cobra.Command, methodName, mappingPath string, startedAt time.Time, summary compare.Summary) (string, error) {
	st, err := store.Open(cfg.Store.DatabaseURL)
	if err != nil {
		return "", err
	}
	defer st.Close() //nolint:errcheck

	ctx := cmd.Context()
	if err := st.Migrate(ctx); err != nil {
		return "", err
	}
	return st.RecordRun(ctx, store.RunRecord{
		Method:      methodName,
		MappingPath: mappingPath,
		StartedAt:   startedAt,
		FinishedAt:  time.Now().UTC(),
	}, summary)
}

func init() {
	compareCmd.Flags().StringVar(&compareMapping, "mapping", "", "path to the curated mapping CSV (default <out>/"+mapping.FileName+")")
	compareCmd.Flags().StringVar(&compareOut, "out", "", "output directory (default from config)")
	compareCmd.Flags().StringVar(&compareMethod, "method", "", "FBS method name recorded with the run (default from config)")
	rootCmd.AddCommand(compareCmd)
}
