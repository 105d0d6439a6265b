package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/key-verify-api/internal/config"
	"github.com/key-verify-api/internal/infrastructure/awsconf"
	"github.com/key-verify-api/internal/infrastructure/dynamo"
	"github.com/key-verify-api/internal/infrastructure/firebase"
	kafkainfra "github.com/key-verify-api/internal/infrastructure/kafka"
	"github.com/key-verify-api/internal/infrastructure/redisstore"
	s3infra "github.com/key-verify-api/internal/infrastructure/s3"
	"github.com/key-verify-api/internal/infrastructure/sns"
	"github.com/key-verify-api/internal/metrics"
	"github.com/key-verify-api/internal/pkg/logger"
	transporthttp "github.com/key-verify-api/internal/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	store, closeStore, err := newStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("init store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()

	publisher, closePublisher, err := newPublisher(ctx, cfg)
	if err != nil {
		zl.Fatal("init event sink", zap.String("sink", cfg.EventSink), zap.Error(err))
	}
	defer closePublisher()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps := &transporthttp.Deps{
		Store:     store,
		Publisher: publisher,
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Logger:    zl,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("store", cfg.StoreBackend),
			zap.String("event_sink", cfg.EventSink),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}

// newStore builds the remote document store selected by cfg.StoreBackend.
// The returned func releases any held connections.
func newStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (transporthttp.DocumentStore, func(), error) {
	noop := func() {}
	switch cfg.StoreBackend {
	case config.BackendDynamo:
		awsCfg, err := awsconf.Load(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		client := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
		// Bootstrap the documents table (created if it doesn't exist).
		dynamo.Bootstrap(ctx, client, cfg.DynamoTable, zl)
		return dynamo.NewDocumentRepo(client, cfg.DynamoTable), noop, nil
	case config.BackendS3:
		awsCfg, err := awsconf.Load(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		client := s3infra.NewClient(awsCfg, cfg.AWSEndpointURL)
		return s3infra.NewDocumentStore(client, cfg.S3BucketName, cfg.S3Prefix), noop, nil
	case config.BackendRedis:
		client, err := redisstore.NewClient(cfg)
		if err != nil {
			return nil, noop, err
		}
		return redisstore.NewStore(client), func() { _ = client.Close() }, nil
	default:
		return firebase.NewStore(cfg), noop, nil
	}
}

// newPublisher builds the event sink selected by cfg.EventSink; nil when disabled.
func newPublisher(ctx context.Context, cfg *config.Config) (transporthttp.EventPublisher, func(), error) {
	noop := func() {}
	switch cfg.EventSink {
	case config.SinkSNS:
		awsCfg, err := awsconf.Load(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return sns.NewPublisher(awsCfg, cfg.AWSEndpointURL, cfg.SNSTopicARN), noop, nil
	case config.SinkKafka:
		p := kafkainfra.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		return p, func() { _ = p.Close() }, nil
	default:
		return nil, noop, nil
	}
}
