package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osprey-ai/policybench/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "policybench",
	Short: "Insurance-policy line-item extraction benchmark",
	Long:  "Runs section retrieval, field extraction, and evaluation of LLM line-item extraction over chunked insurance-policy documents.",
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
