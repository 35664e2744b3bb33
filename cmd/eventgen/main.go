// Command eventgen publishes synthetic analytics events to the ingestion
// topic. It exists for local testing of the pipeline; the storefront
// services use the same producer package in production.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bazarly/analytics/domain"
	"github.com/bazarly/analytics/internal/config"
	kafkaInfra "github.com/bazarly/analytics/internal/infrastructure/kafka"
	"github.com/bazarly/analytics/pkg/logger"
)

func main() {
	var (
		action    = flag.String("action", string(domain.ActionProductView), "event action kind")
		userID    = flag.String("user", "", "user id (random when empty)")
		productID = flag.String("product", "", "product id (random when empty)")
		shopID    = flag.String("shop", "shop-1", "shop id")
		country   = flag.String("country", "", "optional country code")
		device    = flag.String("device", "", "optional device kind")
		count     = flag.Int("count", 1, "number of events to emit")
		interval  = flag.Duration("interval", 100*time.Millisecond, "pause between events")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: "console",
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ev := domain.Event{
		Action:    domain.ActionKind(strings.TrimSpace(*action)),
		UserID:    *userID,
		ProductID: *productID,
		ShopID:    *shopID,
		Country:   *country,
		Device:    *device,
	}
	if ev.UserID == "" {
		ev.UserID = "user-" + uuid.NewString()[:8]
	}
	if ev.ProductID == "" {
		ev.ProductID = "product-" + uuid.NewString()[:8]
	}
	if err := ev.Validate(); err != nil {
		log.Fatalf("invalid event: %v", err)
	}

	producer := kafkaInfra.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, zapLogger)
	defer producer.Close()

	ctx := context.Background()
	for i := 0; i < *count; i++ {
		producer.Emit(ctx, ev)
		if i < *count-1 {
			time.Sleep(*interval)
		}
	}

	zapLogger.Sugar().Infof("emitted %d %s event(s) to %s", *count, ev.Action, cfg.Kafka.Topic)
}
