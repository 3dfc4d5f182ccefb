package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.com/discrescue/admin/internal/access"
	"gitlab.com/discrescue/admin/internal/cache"
	"gitlab.com/discrescue/admin/internal/config"
	"gitlab.com/discrescue/admin/internal/db"
	"gitlab.com/discrescue/admin/internal/fulfillment"
	"gitlab.com/discrescue/admin/internal/grpcserver"
	"gitlab.com/discrescue/admin/internal/identity"
	"gitlab.com/discrescue/admin/internal/kafka"
	"gitlab.com/discrescue/admin/internal/logger"
	"gitlab.com/discrescue/admin/internal/repository/postgresql"
	"gitlab.com/discrescue/admin/internal/server"
	"gitlab.com/discrescue/admin/internal/storage"
	"gitlab.com/discrescue/admin/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Failed to load config", zap.Error(err))
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Service stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Service gracefully stopped")
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	database, err := db.NewDb(ctx, cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.MigrateOnStart {
		if err := db.ApplyMigrations(ctx, database, migrations.FS, log); err != nil {
			return err
		}
	}

	if err := db.InitAdmin(ctx, database, cfg.AdminUsername, cfg.AdminPassword, log); err != nil {
		return err
	}

	orderRepo := postgresql.NewOrderRepo(database)
	outboxRepo := postgresql.NewOutboxTaskRepo()
	userRepo := postgresql.NewUserRepo(database)

	orderCache := cache.NewOrderCache(orderRepo, log)
	if err := orderCache.LoadInitialData(ctx); err != nil {
		log.Warn("Failed to warm order cache", zap.Error(err))
	}

	stg := storage.NewStorage(database, storage.Repositories{
		Orders:   orderRepo,
		History:  postgresql.NewHistoryRepo(database),
		Plastics: postgresql.NewPlasticRepo(database),
		Stats:    postgresql.NewStatsRepo(database),
		Outbox:   outboxRepo,
	}, orderCache, cfg.Kafka.Topic, log)

	resolver := identity.Chain{
		identity.NewJWTResolver(cfg.JWTSecret, cfg.AccessTokenCookie, nil),
		identity.NewBasicResolver(userRepo),
	}

	srv := server.New(stg, resolver, fulfillment.NewMachine(fulfillment.SystemClock{}), server.Options{
		Policy:                access.Policy{LegacyPrefixMatch: cfg.LegacyPrefixMatch},
		RequireTrackingNumber: cfg.RequireTrackingNumber,
	}, log)

	grpcSrv := grpcserver.NewServer(database, cfg.HealthInterval, log)

	publisher := kafka.NewPublisher(database, outboxRepo, kafka.NewProducer(cfg.Kafka.Brokers, log), kafka.PublisherConfig{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
		ClaimLease:   cfg.Outbox.ClaimLease,
	}, log)

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx, cfg.HTTPPort)
	})
	g.Go(func() error {
		return grpcSrv.Run(gctx, cfg.GRPCPort)
	})
	g.Go(func() error {
		log.Info("Metrics server starting", zap.String("port", cfg.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		publisher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", zap.Error(err))
		}
		grpcSrv.Shutdown()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("Metrics server shutdown failed", zap.Error(err))
		}
		publisher.Shutdown()
		return nil
	})

	return g.Wait()
}
