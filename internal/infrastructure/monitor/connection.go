package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bazarly/analytics/internal/infrastructure/deadletter"
	"github.com/bazarly/analytics/internal/infrastructure/queue"
)

// Monitor periodically probes the stores behind the pipeline and tracks
// queue depth, so degraded analytics completeness shows up in the logs
// even though nothing here is user-facing.
type Monitor struct {
	pg    *pgxpool.Pool
	redis *redislib.Client
	sink  *deadletter.Store
	queue *queue.Queue

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(
	pg *pgxpool.Pool,
	redis *redislib.Client,
	sink *deadletter.Store,
	q *queue.Queue,
	interval time.Duration,
	logger *zap.Logger,
) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		sink:     sink,
		queue:    q,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PostgreSQL && m.status.Redis
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		PostgreSQL:     m.checkPostgres(),
		Redis:          m.checkRedis(),
		QueueDepth:     m.queueDepth(),
		DeadLetterSize: m.deadLetterSize(),
		LastCheck:      time.Now(),
	}

	if !status.PostgreSQL || !status.Redis {
		m.logger.Warn("storage degraded, analytics may be incomplete",
			zap.Bool("postgres", status.PostgreSQL),
			zap.Bool("redis", status.Redis),
			zap.Int("queue_depth", status.QueueDepth))
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkPostgres() bool {
	if m.pg == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.pg.Ping(ctx) == nil
}

func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}

func (m *Monitor) queueDepth() int {
	if m.queue == nil {
		return 0
	}
	return m.queue.Len()
}

func (m *Monitor) deadLetterSize() int {
	if m.sink == nil {
		return 0
	}
	size, err := m.sink.Size()
	if err != nil {
		m.logger.Warn("dead-letter size check failed", zap.Error(err))
		return 0
	}
	return size
}
