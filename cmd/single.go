package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ceda-group/align-cli/internal/compare"
	"github.com/ceda-group/align-cli/internal/method"
	"github.com/ceda-group/align-cli/internal/single"
)

var (
	singleSource  string
	singleSet     string
	singleMethod  string
	singleScratch string
	singleOut     string
)

var singleCmd = &cobra.Command{
	Use:   "single",
	Short: "Regenerate one FBS source or activity set in isolation",
	Long: `Writes a scratch method restricted to one source (and optionally one
activity set) and runs the FBS engine on it, so a single slice can be
iterated on without regenerating the whole method. Scratch methods land in
the scratch directory and should not be committed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		methodName := singleMethod
		if methodName == "" {
			methodName = cfg.Method.Default
		}
		scratchDir := singleScratch
		if scratchDir == "" {
			scratchDir = cfg.Paths.ScratchDir
		}

		fbs, err := compare.LoadHarmonizedFBS(cfg.FBS.Harmonized)
		if err != nil {
			return err
		}

		runner := &single.Runner{
			Loader:     &method.Loader{TransformDir: cfg.Paths.TransformDir},
			Engine:     &single.FileEngine{FBS: fbs},
			ScratchDir: scratchDir,
		}
		matrix, err := runner.Run(ctx, methodName, singleSource, singleSet)
		if err != nil {
			return err
		}

		sliceID := singleSource
		if singleSet != "" {
			sliceID = singleSource + "." + singleSet
		}
		outDir := singleOut
		if outDir == "" {
			outDir = cfg.Paths.OutputDir
		}
		outPath := filepath.Join(outDir, "fbs_single_"+sliceID+".csv")
		if err := writeSliceCSV(outPath, matrix); err != nil {
			return err
		}

		log := zap.L().With(zap.String("fbs_slice", sliceID))
		for _, gas := range sortedGases(matrix) {
			log.Info("single: gas total", zap.String("gas", gas), zap.Float64("co2e", matrix.GasTotal(gas)))
		}
		log.Info("single: slice written", zap.String("path", outPath))
		return nil
	},
}

func writeSliceCSV(path string, matrix compare.Matrix) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "single: create output dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "single: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{"gas", "sector", "co2e"}); err != nil {
		return eris.Wrapf(err, "single: write header %s", path)
	}
	for _, gas := range sortedGases(matrix) {
		vec := matrix[gas]
		sectors := make([]string, 0, len(vec))
		for sector := range vec {
			sectors = append(sectors, sector)
		}
		sort.Strings(sectors)
		for _, sector := range sectors {
			if err := w.Write([]string{gas, sector, formatAmount(vec[sector])}); err != nil {
				return eris.Wrapf(err, "single: write row %s", path)
			}
		}
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "single: flush %s", path)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func sortedGases(matrix compare.Matrix) []string {
	gases := make([]string, 0, len(matrix))
	for gas := range matrix {
		gases = append(gases, gas)
	}
	sort.Strings(gases)
	return gases
}

func init() {
	singleCmd.Flags().StringVar(&singleSource, "source", "", "FBS source name (required)")
	singleCmd.Flags().StringVar(&singleSet, "activity-set", "", "activity set within the source")
	singleCmd.Flags().StringVar(&singleMethod, "method", "", "FBS method name (default from config)")
	singleCmd.Flags().StringVar(&singleScratch, "scratch", "", "scratch directory for temp methods (default from config)")
	singleCmd.Flags().StringVar(&singleOut, "out", "", "output directory (default from config)")
	_ = singleCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(singleCmd)
}
