package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ceda-group/align-cli/internal/method"
	"github.com/ceda-group/align-cli/internal/methoddiff"
)

var (
	diffMapping bool
	diffOutput  string
)

// outputAuto marks --output given without a path; the filename is then
// derived from both method names.
const outputAuto = "\x00auto"

var diffCmd = &cobra.Command{
	Use:   "diff <baseline_method> <test_method>",
	Short: "Diff two resolved FBS method configs",
	Long: `Resolves both methods (include chains expanded, overrides applied) and
reports only the keys that differ, so an edit's blast radius can be checked
before regenerating FBS output.

Examples:
  # Config diff only
  align-cli diff GHG_national_CEDA_2023 GHG_national_CEDA_2023_edit

  # Also diff the sector-mapping files each method references
  align-cli diff base edit --mapping

  # Write the diff document (default name <baseline>_vs_<test>_diffs.yaml)
  align-cli diff base edit --output
  align-cli diff base edit --output=my_diffs.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		baselineMethod, testMethod := args[0], args[1]

		loader := &method.Loader{TransformDir: cfg.Paths.TransformDir}
		baseline, err := loader.Resolve(baselineMethod)
		if err != nil {
			return eris.Wrapf(err, "diff: resolve baseline %s", baselineMethod)
		}
		test, err := loader.Resolve(testMethod)
		if err != nil {
			return eris.Wrapf(err, "diff: resolve test %s", testMethod)
		}

		entries := methoddiff.Diff(baseline, test)
		fmt.Fprintln(os.Stdout, "Config diff (baseline vs test):")
		fmt.Fprintln(os.Stdout, methoddiff.FormatEntries(entries))

		var mappingDiffs []methoddiff.MappingDiff
		if diffMapping {
			mappingDiffs, err = methoddiff.DiffSectorMappings(cfg.Paths.CrosswalkDir, baseline, test)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout)
			fmt.Fprintln(os.Stdout, "Mapping file content diff:")
			fmt.Fprintln(os.Stdout, methoddiff.FormatMappingDiffs(mappingDiffs))
		}

		if diffOutput != "" {
			path := diffOutput
			if path == outputAuto {
				path = methoddiff.DefaultOutputPath(baselineMethod, testMethod)
			}
			report := methoddiff.BuildReport(baselineMethod, testMethod, entries, mappingDiffs)
			if err := report.WriteYAML(path); err != nil {
				return err
			}
			zap.L().Info("diff: report written", zap.String("path", path))
		}

		return nil
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffMapping, "mapping", false, "also diff the sector-mapping files each method references")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "", "write the diff document as YAML; use --output=path or bare --output for a derived filename")
	diffCmd.Flags().Lookup("output").NoOptDefVal = outputAuto
	rootCmd.AddCommand(diffCmd)
}
