package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ceda-group/align-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "align-cli",
	Short: "FBS and registry alignment tooling for the CEDA EEIO pipeline",
	Long:  "Cross-references FBS method slices against the allocated-emissions registry, diffs resolved method configs, and batch-compares curated slice/source pairs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
