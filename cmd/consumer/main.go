package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"gitlab.com/discrescue/admin/internal/config"
	"gitlab.com/discrescue/admin/internal/logger"
	"gitlab.com/discrescue/admin/internal/repository"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Failed to load config", zap.Error(err))
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	defer func() { _ = log.Sync() }()

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is not set")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		Topic:          cfg.Kafka.Topic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		log.Info("Closing Kafka reader")
		if err := r.Close(); err != nil {
			log.Error("Error closing Kafka reader", zap.Error(err))
		}
	}()

	log.Info("Consumer connected",
		zap.String("topic", cfg.Kafka.Topic),
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("group_id", cfg.Kafka.GroupID),
	)

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("Shutdown signal received, stopping consumer")
				return
			}
			log.Error("Error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		fields := []zap.Field{
			zap.Time("timestamp", m.Time),
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.ByteString("key", m.Key),
		}

		var event repository.OrderEventPayload
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Warn("Undecodable order event", append(fields, zap.ByteString("value", m.Value), zap.Error(err))...)
			continue
		}

		log.Info("Order event",
			append(fields,
				zap.String("type", event.Type),
				zap.String("order_id", event.OrderID),
				zap.String("old_status", event.OldStatus),
				zap.String("new_status", event.NewStatus),
				zap.String("changed_by", event.ChangedBy),
				zap.Time("occurred_at", event.OccurredAt),
			)...,
		)
	}
}
