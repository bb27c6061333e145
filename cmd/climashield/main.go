// Command climashield runs the forecast job and one-off assessments from the
// command line.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/climashield/internal/config"
	"github.com/couchcryptid/climashield/internal/observability"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "climashield",
		Short:         "Climate risk assessment and AQI/rainfall forecasting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(assessCmd())
	rootCmd.AddCommand(areasCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setup loads .env, the environment config, and a logger writing to stderr
// so command output on stdout stays machine-readable.
func setup() (*config.Config, *slog.Logger, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	cfg.LogFormat = "text"
	return cfg, observability.NewStderrLogger(cfg), nil
}
