package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/resellkit/research-core/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "research-core",
	Short: "Autonomous product research pipeline",
	Long:  "Researches resale inventory items: cross-validates observations from simulated research tools, plans spend against a budget, and assembles marketplace-ready listings.",
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
