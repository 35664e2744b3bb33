package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bazarly/analytics/domain"
	"github.com/bazarly/analytics/internal/infrastructure/deadletter"
	"github.com/bazarly/analytics/internal/infrastructure/queue"
)

// Aggregator folds a single event into a persisted aggregate.
type Aggregator interface {
	Name() string
	Aggregate(ctx context.Context, ev domain.Event) *domain.AggregationError
}

// DispatcherConfig controls how frequently the queue is flushed.
type DispatcherConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Dispatcher periodically drains the ingestion queue and feeds each event
// to the aggregators in order. Failures are handled per event: always
// logged, dead-lettered when a sink is configured, never allowed to abort
// the rest of the batch.
type Dispatcher struct {
	queue    *queue.Queue
	users    Aggregator
	products Aggregator
	sink     *deadletter.Store
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      DispatcherConfig
	busy     atomic.Bool
}

// NewDispatcher wires the flush cycle. The dead-letter sink may be nil, in
// which case failed events are only logged.
func NewDispatcher(
	q *queue.Queue,
	users Aggregator,
	products Aggregator,
	sink *deadletter.Store,
	logger *zap.Logger,
	cfg DispatcherConfig,
) *Dispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		queue:    q,
		users:    users,
		products: products,
		sink:     sink,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = d.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		d.Flush(ctx)
	})

	return d
}

// Start launches the cron scheduler.
func (d *Dispatcher) Start() {
	if d == nil || d.cron == nil {
		return
	}
	d.cron.Start()
	d.logger.Info("dispatcher started", zap.Duration("interval", d.cfg.Interval))
}

// Stop halts the scheduler and runs one final flush so buffered events are
// not silently dropped on shutdown.
func (d *Dispatcher) Stop(ctx context.Context) {
	if d == nil || d.cron == nil {
		return
	}
	stopCtx := d.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	d.Flush(ctx)
	d.logger.Info("dispatcher stopped")
}

// Flush drains the queue and processes the captured batch sequentially.
// A flush already in progress causes the call to be skipped; waiting
// events stay queued for the next cycle rather than racing the in-flight
// batch on the same records.
func (d *Dispatcher) Flush(ctx context.Context) {
	if d == nil || d.queue == nil {
		return
	}
	if !d.busy.CompareAndSwap(false, true) {
		d.logger.Warn("flush still in progress, skipping cycle")
		return
	}
	defer d.busy.Store(false)

	batch := d.queue.DrainAll()
	if len(batch) == 0 {
		return
	}

	start := time.Now()
	failed := 0
	for _, ev := range batch {
		if aerr := d.users.Aggregate(ctx, ev); aerr != nil {
			failed++
			d.handleFailure(ev, aerr)
		}
		if aerr := d.products.Aggregate(ctx, ev); aerr != nil {
			failed++
			d.handleFailure(ev, aerr)
		}
	}

	d.logger.Info("batch flushed",
		zap.Int("events", len(batch)),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)))
}

func (d *Dispatcher) handleFailure(ev domain.Event, aerr *domain.AggregationError) {
	d.logger.Error("event aggregation failed",
		zap.String("stage", aerr.Stage),
		zap.String("action", string(ev.Action)),
		zap.String("user_id", ev.UserID),
		zap.String("product_id", ev.ProductID),
		zap.Error(aerr))

	if d.sink == nil {
		return
	}
	if err := d.sink.Put(deadletter.Record{
		Stage:  aerr.Stage,
		Reason: aerr.Error(),
		Event:  ev,
	}); err != nil {
		d.logger.Warn("failed to dead-letter event", zap.Error(err))
	}
}
