package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/config"
	"github.com/eventlab/commerce-analytics-pipeline/internal/logger"
	"github.com/eventlab/commerce-analytics-pipeline/internal/monitor"
	"github.com/eventlab/commerce-analytics-pipeline/internal/normalizer"
	"github.com/eventlab/commerce-analytics-pipeline/internal/queue"
	"github.com/eventlab/commerce-analytics-pipeline/internal/queue/sqs"
	"github.com/eventlab/commerce-analytics-pipeline/internal/repository/clickhouse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting monitoring run",
		zap.String("environment", cfg.Service.Environment))

	thresholds, err := config.LoadThresholds(cfg.Monitor.ThresholdsFile)
	if err != nil {
		log.Fatal("Failed to load thresholds", zap.Error(err))
	}

	ctx := context.Background()

	chClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func() {
		if err := chClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	repo := clickhouse.NewRepository(chClient, log)

	raw, err := repo.FetchCleanedEvents(ctx)
	if err != nil {
		log.Fatal("Failed to fetch cleaned events", zap.Error(err))
	}
	events, err := normalizer.New(cfg.Pipeline.EventNameRemap, log).Normalize(raw)
	if err != nil {
		log.Fatal("Failed to normalize events", zap.Error(err))
	}
	sessions, err := repo.FetchSessions(ctx)
	if err != nil {
		log.Fatal("Failed to fetch sessions", zap.Error(err))
	}
	records, err := repo.FetchAttributions(ctx)
	if err != nil {
		log.Fatal("Failed to fetch attributions", zap.Error(err))
	}

	snapshots := monitor.BuildSnapshots(events, sessions, records, nil)
	evalDate, ok := monitor.LatestDate(snapshots)
	if !ok {
		log.Fatal("No data available to determine monitoring date")
	}

	m := monitor.New(cfg.Monitor.BaselineDays, thresholds, log)
	report := m.Evaluate(evalDate, snapshots)

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatal("Failed to marshal report", zap.Error(err))
	}
	if err := os.WriteFile(cfg.Monitor.ReportPath, payload, 0o644); err != nil {
		log.Fatal("Failed to write report file", zap.Error(err))
	}
	log.Info("Monitoring report written", zap.String("path", cfg.Monitor.ReportPath))

	if err := repo.InsertReport(ctx, report); err != nil {
		log.Fatal("Failed to store report", zap.Error(err))
	}

	if cfg.SQS.QueueURL != "" {
		var publisher queue.ReportPublisher
		publisher, err = sqs.NewClient(ctx, cfg.SQS, log)
		if err != nil {
			log.Fatal("Failed to create SQS client", zap.Error(err))
		}
		if err := publisher.PublishReport(ctx, report); err != nil {
			log.Fatal("Failed to publish report", zap.Error(err))
		}
	}

	// Only FAIL stops a dependent pipeline stage; WARN/INFO are data.
	if report.Failed() {
		log.Error("Monitoring detected critical drift",
			zap.String("date", report.Date),
			zap.Int("alert_count", len(report.Alerts)))
		_ = log.Sync()
		os.Exit(1)
	}

	log.Info("Monitoring passed", zap.String("date", report.Date))
}
