package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/billbook/billbook/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "billbookctl",
	Short:         "Administrative tasks for the billbook API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// loadConfig reads the environment and installs the configured logger on stderr,
// leaving stdout for command output.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	slog.SetDefault(cfg.NewLogger(os.Stderr))

	return cfg, nil
}
