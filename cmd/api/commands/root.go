package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/climate-finance-tracker/cft-backend/config"
	"github.com/climate-finance-tracker/cft-backend/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:          "cft-api",
	Short:        "Climate finance tracker backend",
	Long:         `Serves the climate finance project tracking API and manages its database schema.`,
	SilenceUsage: true,
}

func GetRootCmd() *cobra.Command {
	return rootCmd
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(os.Stderr, cfg.App.LogLevel, cfg.IsProduction())
	slog.SetDefault(logger)
	return cfg, logger, nil
}
