package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	discoverTimeout      int
	discoverMaxDepth     int
	discoverPretty       bool
	discoverNoClassifier bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover <restaurant-url>",
	Short: "Find and extract a restaurant's menu",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if discoverTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(discoverTimeout)*time.Second)
			defer cancel()
		}

		if discoverMaxDepth > 0 {
			cfg.Discovery.MaxDepth = discoverMaxDepth
		}
		if discoverNoClassifier {
			cfg.Anthropic.Key = ""
		}

		env, err := initPipeline()
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Locator.Discover(ctx, args[0])
		if err != nil {
			return err
		}

		if !result.Success {
			zap.L().Warn("no menu found",
				zap.String("url", args[0]),
				zap.String("reason", result.Reason),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		if discoverPretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(result)
	},
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "timeout", 120, "overall timeout in seconds (0 for none)")
	discoverCmd.Flags().IntVar(&discoverMaxDepth, "max-depth", 0, "link search depth (default from config)")
	discoverCmd.Flags().BoolVar(&discoverPretty, "pretty", true, "indent the JSON output")
	discoverCmd.Flags().BoolVar(&discoverNoClassifier, "no-classifier", false, "skip the model classifier and use heuristics only")
	rootCmd.AddCommand(discoverCmd)
}
