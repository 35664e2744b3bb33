package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bazarly/analytics/domain"
	"github.com/bazarly/analytics/internal/infrastructure/queue"
)

// ConsumerConfig holds the reader settings for the event topic.
type ConsumerConfig struct {
	Brokers        []string
	Topic          string
	GroupID        string
	MinBytes       int
	MaxBytes       int
	MaxWait        time.Duration
	CommitInterval time.Duration
}

// Consumer reads events from the durable topic and pushes the valid ones
// into the ingestion queue. Offsets commit on CommitInterval regardless of
// whether the buffered events are later flushed successfully, so delivery
// is at-least-once end to end.
type Consumer struct {
	reader *kafkago.Reader
	queue  *queue.Queue
	logger *zap.Logger
}

// NewConsumer dials the brokers to fail fast on misconfiguration, then
// builds the consumer-group reader.
func NewConsumer(ctx context.Context, cfg ConsumerConfig, q *queue.Queue, logger *zap.Logger) (*Consumer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Brokers) == 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "no kafka brokers configured")
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	conn, err := kafkago.DialContext(dialCtx, "tcp", cfg.Brokers[0])
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "kafka broker unreachable", err)
	}
	_ = conn.Close()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		CommitInterval: cfg.CommitInterval,
	})

	return &Consumer{
		reader: reader,
		queue:  q,
		logger: logger,
	}, nil
}

// Run consumes until the context is canceled or the reader is closed.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("consumer started",
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group", c.reader.Config().GroupID))

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				c.logger.Info("consumer stopped")
				return
			}
			c.logger.Error("kafka read failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		ev, err := domain.ParseEvent(msg.Value)
		if err != nil {
			// malformed or unrecognized payloads are dropped, not retried
			c.logger.Warn("dropping event",
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			continue
		}

		if err := c.queue.Enqueue(*ev); err != nil {
			c.logger.Warn("dropping event, queue closed",
				zap.String("action", string(ev.Action)))
		}
	}
}

// Close shuts down the reader, unblocking Run.
func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
