package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ceda-group/align-cli/internal/store"
)

var (
	runsLimit int
	runsRows  string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded comparison runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Store.DatabaseURL == "" {
			return eris.New("runs: store.database_url is not configured; set ALIGN_STORE_DATABASE_URL or store.database_url in config.yaml")
		}

		st, err := store.Open(cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ctx := cmd.Context()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if runsRows != "" {
			return printRunRows(cmd, st, runsRows)
		}

		records, err := st.ListRuns(ctx, runsLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMETHOD\tTOTAL\tOK\tFAILED\tSTARTED")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
				rec.ID, rec.Method, rec.Total, rec.Succeeded, rec.Failed,
				rec.StartedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

func printRunRows(cmd *cobra.Command, st *store.Store, runID string) error {
	rows, err := st.RunRows(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return eris.Errorf("runs: no rows recorded for run %s", runID)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FBS_SLICE\tEMISSIONS_SOURCE\tGAS\tFBS_TOTAL\tREGISTRY_TOTAL\tABS_DIFF\tCOMPARED\tREASON")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\t%t\t%s\n",
			row.Slice, row.Source, row.Gas,
			row.FBSTotal, row.RegistryTotal, row.AbsDiff,
			row.Compared, row.Reason,
		)
	}
	return w.Flush()
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "max runs to list")
	runsCmd.Flags().StringVar(&runsRows, "rows", "", "print the recorded rows of one run ID")
	rootCmd.AddCommand(runsCmd)
}
