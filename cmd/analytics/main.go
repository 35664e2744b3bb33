package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/bazarly/analytics/internal/config"
	"github.com/bazarly/analytics/internal/infrastructure/deadletter"
	kafkaInfra "github.com/bazarly/analytics/internal/infrastructure/kafka"
	"github.com/bazarly/analytics/internal/infrastructure/monitor"
	pgInfra "github.com/bazarly/analytics/internal/infrastructure/postgres"
	"github.com/bazarly/analytics/internal/infrastructure/queue"
	redisInfra "github.com/bazarly/analytics/internal/infrastructure/redis"
	"github.com/bazarly/analytics/internal/services"
	"github.com/bazarly/analytics/internal/services/aggregator"
	"github.com/bazarly/analytics/internal/services/lifecycle"
	"github.com/bazarly/analytics/pkg/logger"
	"github.com/bazarly/analytics/repository/postgres"
	redisRepo "github.com/bazarly/analytics/repository/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := lifecycle.NotifyContext(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	var sink *deadletter.Store
	if cfg.DeadLetter.Enabled {
		sink, err = deadletter.Open(cfg.DeadLetter.Path, "deadletter")
		if err != nil {
			zapLogger.Fatal("failed to open dead-letter store", zap.Error(err))
		}
		manager.Register("deadletter", func(ctx context.Context) error {
			return sink.Close()
		})
	}

	eventQueue := queue.New()

	mon := monitor.New(pool, redisClient, sink, eventQueue, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserAnalyticsRepository(pool)
	productRepo := postgres.NewProductAnalyticsRepository(pool)
	counterRepo := redisRepo.NewCounterRepository(redisClient)

	users := aggregator.NewUserAggregator(userRepo, logger.WithComponent(zapLogger, "user_aggregator"))
	products := aggregator.NewProductAggregator(productRepo, counterRepo, logger.WithComponent(zapLogger, "product_aggregator"))

	dispatcher := services.NewDispatcher(
		eventQueue,
		users,
		products,
		sink,
		logger.WithComponent(zapLogger, "dispatcher"),
		services.DispatcherConfig{
			Interval: cfg.Flush.Interval,
			Timeout:  cfg.Flush.Timeout,
		},
	)
	dispatcher.Start()

	consumer, err := kafkaInfra.NewConsumer(appCtx, kafkaInfra.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.Topic,
		GroupID:        cfg.Kafka.GroupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		MaxWait:        cfg.Kafka.MaxWait,
		CommitInterval: cfg.Kafka.CommitInterval,
	}, eventQueue, logger.WithComponent(zapLogger, "consumer"))
	if err != nil {
		zapLogger.Fatal("kafka connection failed", zap.Error(err))
	}

	// shutdown order: stop the consumer, seal the queue, let the
	// dispatcher flush what is left, then close the stores
	manager.Register("dispatcher", func(ctx context.Context) error {
		eventQueue.Close()
		dispatcher.Stop(ctx)
		return nil
	})
	manager.Register("consumer", func(ctx context.Context) error {
		return consumer.Close()
	})

	go consumer.Run(appCtx)

	zapLogger.Info("analytics ingestion started",
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Duration("flush_interval", cfg.Flush.Interval))

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
