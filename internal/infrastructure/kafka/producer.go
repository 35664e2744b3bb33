package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bazarly/analytics/domain"
)

// Producer publishes analytics events to the durable topic. Delivery is
// best-effort: callers never block on confirmation and failures are logged
// and swallowed so storefront latency stays decoupled from the pipeline.
type Producer struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewProducer builds a fire-and-forget topic writer.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafkago.LeastBytes{},
	}
	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// Emit publishes one event. Invalid events and write failures are logged
// and dropped.
func (p *Producer) Emit(ctx context.Context, ev domain.Event) {
	if p == nil || p.writer == nil {
		return
	}
	if err := ev.Validate(); err != nil {
		p.logger.Warn("refusing to emit invalid event", zap.Error(err))
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("event marshal failed", zap.Error(err))
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	msg := kafkago.Message{Value: payload}
	if ev.UserID != "" {
		msg.Key = []byte(ev.UserID)
	}
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.logger.Warn("event emit failed",
			zap.String("action", string(ev.Action)),
			zap.Error(err))
	}
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
