package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/your-org/imageflow/internal/cache"
	"github.com/your-org/imageflow/internal/delivery"
	"github.com/your-org/imageflow/internal/lookup"
	"github.com/your-org/imageflow/internal/metastore"
	"github.com/your-org/imageflow/pkg/config"
	"github.com/your-org/imageflow/pkg/logger"
	"github.com/your-org/imageflow/pkg/storage/objectstore"
	"github.com/your-org/imageflow/pkg/tracing"
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

	traceShutdown, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		Attributes:  parseResourceAttributes(cfg.Tracing.ResourceAttr),
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		logr.Fatal("init tracing", zap.Error(err))
	}
	defer traceShutdown(context.Background()) //nolint:errcheck

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

	var resolver delivery.Resolver
	switch cfg.Delivery.Mode {
	case "cdn":
		resolver, err = delivery.NewCDN(cfg.Delivery.CDNDomain)
		if err != nil {
			logr.Fatal("init cdn resolver", zap.Error(err))
		}
	case "signed":
		resolver = delivery.NewSigned(store, cfg.Delivery.SignExpiry)
	default:
		logr.Fatal("unknown delivery mode", zap.String("mode", cfg.Delivery.Mode))
	}

	service := lookup.NewService(lookup.Params{
		Store:       metaStore,
		Cache:       metaCache,
		Resolver:    resolver,
		Logger:      logr,
		PositiveTTL: cfg.Cache.PositiveTTL,
		NegativeTTL: cfg.Cache.NegativeTTL,
	})

	handler := lookup.NewHTTPHandler(service, logr)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

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

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Error("http server shutdown failed", zap.Error(err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logr.Error("metrics server shutdown failed", zap.Error(err))
		}
		if err := metaCache.Close(); err != nil {
			logr.Error("cache shutdown failed", zap.Error(err))
		}
		if err := store.Close(); err != nil {
			logr.Error("object store shutdown failed", zap.Error(err))
		}
	}()

	logr.Info("reader service starting",
		zap.String("addr", cfg.HTTP.Addr),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.String("delivery", cfg.Delivery.Mode),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Fatal("http server failed", zap.Error(err))
	}
}

func parseResourceAttributes(raw string) map[string]string {
	attrs := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			continue
		}
		attrs[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return attrs
}
