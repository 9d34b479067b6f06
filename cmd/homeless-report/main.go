package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/couchcryptid/homeless-data-etl/internal/adapter/chart"
	"github.com/couchcryptid/homeless-data-etl/internal/adapter/console"
	"github.com/couchcryptid/homeless-data-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/homeless-data-etl/internal/adapter/excel"
	kafkaadapter "github.com/couchcryptid/homeless-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/homeless-data-etl/internal/config"
	"github.com/couchcryptid/homeless-data-etl/internal/domain"
	"github.com/couchcryptid/homeless-data-etl/internal/observability"
	"github.com/couchcryptid/homeless-data-etl/internal/pipeline"
)

const metricsJob = "homeless_report"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()
	runID := uuid.NewString()

	src := csvfile.NewSource(cfg.DataDir, cfg.GeoFile, cfg.CountsFile, cfg.StatesFile, logger)
	opts := pipeline.Options{
		Report: domain.ReportOptions{
			OutlierCeiling: cfg.OutlierCeiling,
			Drop:           cfg.Drop,
		},
		HistogramBins: cfg.HistogramBins,
	}
	p := pipeline.New(src, console.NewPrinter(os.Stdout, cfg.TopN), opts, logger, metrics)

	if cfg.ChartsEnabled {
		p.WithRenderer(chart.NewRenderer(cfg.ChartsDir(), logger))
	}
	if cfg.XLSXEnabled {
		p.WithExporter(excel.NewExporter(cfg.WorkbookPath(), logger))
	}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		p.WithPublisher(writer)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, runErr := p.Run(ctx, runID)

	// Metrics are pushed for failed runs too so run_succeeded=0 is visible.
	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, metricsJob); err != nil {
			logger.Error("metrics push failed", "error", err)
		}
	}

	return runErr
}
