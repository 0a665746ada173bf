package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plateworks/menuscan/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "menuscan",
	Short: "Restaurant menu discovery and extraction",
	Long:  "Finds the menu page for a restaurant website, extracts structured menu items via layered DOM heuristics and Claude-assisted classification, and handles PDF menus.",
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
