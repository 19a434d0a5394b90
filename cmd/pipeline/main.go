package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/eventlab/commerce-analytics-pipeline/internal/config"
	"github.com/eventlab/commerce-analytics-pipeline/internal/logger"
	"github.com/eventlab/commerce-analytics-pipeline/internal/pipeline"
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

	log.Info("Starting pipeline service",
		zap.String("environment", cfg.Service.Environment))

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

	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}
	log.Info("Database schema initialized")

	p := pipeline.New(&cfg.Pipeline, repo, log)

	result, err := p.Run(ctx)
	if err != nil {
		log.Fatal("Pipeline run failed", zap.Error(err))
	}

	log.Info("Pipeline finished",
		zap.String("run_id", result.RunID),
		zap.Int("events", result.EventCount),
		zap.Int("sessions", result.SessionCount),
		zap.Int("users", result.UserCount),
		zap.Int("purchases", result.PurchaseCount),
		zap.Float64("attributed_revenue", result.AttributedRevenue))
}
