package main

import (
	"fmt"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/climashield/internal/adapter/kafka"
	"github.com/couchcryptid/climashield/internal/adapter/sqlite"
	"github.com/couchcryptid/climashield/internal/dataset"
	"github.com/couchcryptid/climashield/internal/domain"
	"github.com/couchcryptid/climashield/internal/observability"
	"github.com/couchcryptid/climashield/internal/pipeline"
)

func forecastCmd() *cobra.Command {
	var (
		publish  bool
		output   string
		xlsxPath string
		dbPath   string
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Fit per-area trends and write the extended AQI/rainfall table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if output != "" {
				cfg.ForecastOutputPath = output
			}
			if xlsxPath != "" {
				cfg.ForecastXLSXPath = xlsxPath
			}
			if dbPath != "" {
				cfg.ForecastDBPath = dbPath
			}

			sinks := []pipeline.ForecastSink{pipeline.CSVSink{Path: cfg.ForecastOutputPath}}
			if cfg.ForecastXLSXPath != "" {
				sinks = append(sinks, pipeline.XLSXSink{Path: cfg.ForecastXLSXPath})
			}
			if cfg.ForecastDBPath != "" {
				store, err := sqlite.Open(cfg.ForecastDBPath)
				if err != nil {
					return err
				}
				defer store.Close()
				sinks = append(sinks, pipeline.StoreSink{Store: store})
			}
			if publish {
				if !cfg.KafkaEnabled {
					return fmt.Errorf("--publish requires KAFKA_ENABLED=true")
				}
				w := kafkaadapter.NewForecastWriter(cfg, logger)
				defer w.Close()
				sinks = append(sinks, pipeline.PublishSink{Publisher: w})
			}

			load := func() ([]domain.ClimateObservation, error) {
				return dataset.LoadObservations(cfg.ObservationsPath)
			}
			job := pipeline.NewForecastJob(load, cfg.ForecastRange, sinks, observability.NewMetrics(), logger)

			report, err := job.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s: %d rows (%d areas projected, %d skipped) -> %s\n",
				report.RunID, len(report.Rows), len(report.FittedAreas), len(report.SkippedAreas), cfg.ForecastOutputPath)
			for _, area := range report.SkippedAreas {
				fmt.Fprintf(out, "  skipped %s: fewer than 2 observations\n", area)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", false, "also publish rows to the Kafka forecast topic")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV output path (default FORECAST_OUTPUT_PATH)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an XLSX workbook to this path")
	cmd.Flags().StringVar(&dbPath, "db", "", "also save the run to this SQLite database")
	return cmd
}
