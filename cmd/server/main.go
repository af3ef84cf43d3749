package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/actuallystonmai/university-recommender/internal/config"
	"github.com/actuallystonmai/university-recommender/internal/logging"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

func main() {
	rootCmd := &cobra.Command{
		Use:           "unirec",
		Short:         "University recommendation service",
		Long:          `Clusters universities by reputation, diversity and employment scores and recommends matches for a stated preference.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
			return nil
		},
	}

	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createMigrateCmd())
	rootCmd.AddCommand(createSeedCmd())
	rootCmd.AddCommand(createImportCmd())
	rootCmd.AddCommand(createRecommendCmd())

	if err := rootCmd.Execute(); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
