package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/config"
	"github.com/Nathan-Yinka/autochek-API/pkg/observability"
)

var rootCmd = &cobra.Command{
	Use:   "financed",
	Short: "Vehicle financing eligibility and offer engine",
	Long: `financed evaluates loan applications against listed vehicles, issues
and tracks lender offers, and prices vehicles through the VIN lookup with a
depreciation-model fallback.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, devCertsCmd, devTokenCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads and validates configuration and installs the logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	observability.InitLogger(cfg.Log)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
