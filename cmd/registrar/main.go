package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/your-org/imageflow/internal/cache"
	"github.com/your-org/imageflow/internal/metastore"
	"github.com/your-org/imageflow/internal/register"
	"github.com/your-org/imageflow/pkg/config"
	"github.com/your-org/imageflow/pkg/kafka"
	"github.com/your-org/imageflow/pkg/logger"
	"github.com/your-org/imageflow/pkg/storage/objectstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logr, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	store, err := objectstore.New(objectstore.Config{
		Provider:  cfg.Storage.Provider,
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logr.Fatal("init object store", zap.Error(err))
	}

	metaStore := metastore.NewObjectStore(store, cfg.Storage.MetaPrefix, cfg.Storage.OpTimeout)

	var metaCache cache.MetaCache = cache.NewNoop()
	if cfg.Cache.Enabled {
		metaCache, err = cache.NewRedis(ctx, cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddr,
			Password:  cfg.Cache.RedisPass,
			DB:        cfg.Cache.RedisDB,
			OpTimeout: cfg.Cache.OpTimeout,
		}, logr)
		if err != nil {
			logr.Fatal("init cache", zap.Error(err))
		}
	}

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.ProcessedTopic,
		GroupID:        cfg.Kafka.GroupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: cfg.Kafka.CommitInterval,
	})

	registrar := register.New(register.Params{
		Source: consumer,
		Writer: metaStore,
		Cache:  metaCache,
		Logger: logr,
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    cfg.Metrics.Addr,
		Handler: metricsMux,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("metrics server failed", zap.Error(err))
		}
	}()

	logr.Info("registrar starting",
		zap.String("topic", cfg.Kafka.ProcessedTopic),
		zap.String("group", cfg.Kafka.GroupID),
	)
	if err := registrar.Run(ctx); err != nil {
		logr.Error("registrar stopped", zap.Error(err))
	}

	if err := metricsServer.Shutdown(context.Background()); err != nil {
		logr.Error("metrics server shutdown failed", zap.Error(err))
	}
	if err := consumer.Close(); err != nil {
		logr.Error("consumer shutdown failed", zap.Error(err))
	}
	if err := metaCache.Close(); err != nil {
		logr.Error("cache shutdown failed", zap.Error(err))
	}
	if err := store.Close(); err != nil {
		logr.Error("object store shutdown failed", zap.Error(err))
	}
}
