package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climashield/internal/adapter/openai"
	"github.com/couchcryptid/climashield/internal/dataset"
	"github.com/couchcryptid/climashield/internal/domain"
	"github.com/couchcryptid/climashield/internal/observability"
	"github.com/couchcryptid/climashield/internal/pipeline"
)

func assessCmd() *cobra.Command {
	var noAdvice bool

	cmd := &cobra.Command{
		Use:   "assess <area>...",
		Short: "Print the risk assessment of each area as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if noAdvice {
				cfg.AdvisorEnabled = false
			}

			tables, err := dataset.LoadTables(cfg.ObservationsPath, cfg.SoilPath)
			if err != nil {
				return err
			}
			metrics := observability.NewMetrics()
			assessor := pipeline.NewAreaAssessor(tables, openai.NewAdvisor(cfg, metrics, logger), cfg.TrendSlopeBasis, logger)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, arg := range args {
				area := strings.TrimSpace(arg)
				if area == "" {
					return domain.ErrEmptyArea
				}
				if err := enc.Encode(assessor.Assess(cmd.Context(), area)); err != nil {
					return fmt.Errorf("encode assessment for %s: %w", area, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noAdvice, "no-advice", false, "skip advisory text even when an API key is configured")
	return cmd
}

func areasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List the areas present in the observation table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			tables, err := dataset.LoadTables(cfg.ObservationsPath, cfg.SoilPath)
			if err != nil {
				return err
			}
			for _, area := range tables.Areas() {
				fmt.Fprintln(cmd.OutOrStdout(), area)
			}
			return nil
		},
	}
}
