package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"github.com/wyfcoding/smarthome/pkg/metrics"
	"github.com/wyfcoding/smarthome/pkg/mq"
)

// RelayConfig 投递配置
type RelayConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Relay 轮询发件箱并投递到消息队列，熔断器打开期间暂停投递
type Relay struct {
	store     Store
	producer  mq.Producer
	breaker   *gobreaker.CircuitBreaker
	cfg       RelayConfig
	collector metrics.MetricsCollector
}

// NewRelay 创建投递器
func NewRelay(store Store, producer mq.Producer, cfg RelayConfig, collector metrics.MetricsCollector) *Relay {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "outbox-relay",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "Circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Relay{
		store:     store,
		producer:  producer,
		breaker:   breaker,
		cfg:       cfg,
		collector: collector,
	}
}

// Run 周期性投递，ctx 取消时返回
func (r *Relay) Run(ctx context.Context) error {
	logger.Info(ctx, "Outbox relay started", "interval", r.cfg.Interval, "batch_size", r.cfg.BatchSize)
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil && !errors.Is(err, gobreaker.ErrOpenState) && ctx.Err() == nil {
				logger.Error(ctx, "Outbox relay failed", "error", err)
			}
		}
	}
}

// RelayOnce 投递一批待发事件，返回成功条数
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	events, err := r.store.FetchPending(ctx, r.cfg.BatchSize)
	if err != nil || len(events) == 0 {
		return 0, err
	}

	msgs := make([]mq.Message, 0, len(events))
	for _, ev := range events {
		msgs = append(msgs, mq.Message{
			Topic:   ev.Topic,
			Key:     ev.Key,
			Value:   []byte(ev.Payload),
			Headers: map[string]string{"event_id": ev.ID},
			Time:    ev.CreatedAt,
		})
	}

	_, err = r.breaker.Execute(func() (interface{}, error) {
		return nil, r.producer.Publish(ctx, msgs...)
	})
	if err != nil {
		// 熔断期间没有真正发起投递，不计入重试次数
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, gobreaker.ErrOpenState
		}
		r.collector.RecordOutboxRelay("failed", len(events))
		for _, ev := range events {
			attempts := ev.Attempts + 1
			status := StatusPending
			if attempts >= r.cfg.MaxAttempts {
				status = StatusDead
				logger.Error(ctx, "Outbox event exceeded max attempts", "event_id", ev.ID, "topic", ev.Topic)
			}
			if markErr := r.store.MarkFailed(ctx, ev.ID, attempts, status, err.Error()); markErr != nil {
				logger.Error(ctx, "Failed to mark outbox event", "event_id", ev.ID, "error", markErr)
			}
		}
		return 0, err
	}

	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	if err := r.store.MarkSent(ctx, ids); err != nil {
		// 下次轮询会重复投递，消费方按 event_id 去重
		return 0, err
	}
	r.collector.RecordOutboxRelay("sent", len(events))
	return len(events), nil
}
