package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/daRevrse/football-network/internal/domain"
	"github.com/daRevrse/football-network/internal/infra"
	"github.com/daRevrse/football-network/internal/repository"
	"github.com/daRevrse/football-network/internal/stats"
)

const consumerGroup = "stats-recalc"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("stats consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.KafkaEnabled {
		return fmt.Errorf("stats consumer requires KAFKA_ENABLED=true")
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("stats-consumer connected to postgres")

	recalc := stats.NewRecalculator(pool, repository.NewMatchRepository(), nil, logger)

	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, string(domain.EventMatchFinalized), consumerGroup, cfg.KafkaEnabled, logger)
	defer consumer.Close()
	logger.Info("stats-consumer started", "topic", domain.EventMatchFinalized, "group", consumerGroup)

	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("stats-consumer shutting down")
				return nil
			}
			logger.Error("read message", "error", err)
			continue
		}

		var envelope domain.OutboxDraft
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			logger.Error("decode event envelope", "error", err, "offset", msg.Offset)
			continue
		}

		matchID, err := uuid.Parse(envelope.AggregateID)
		if err != nil {
			logger.Error("parse aggregate id", "error", err, "aggregate_id", envelope.AggregateID)
			continue
		}

		if err := recalc.RecalculateForMatch(ctx, matchID); err != nil {
			logger.Error("recalculate stats", "error", err, "match_id", matchID)
			continue
		}
		logger.Info("stats updated", "match_id", matchID, "event_id", envelope.EventID)
	}
}
