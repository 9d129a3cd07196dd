package messaging

import (
	"context"

	"github.com/wyfcoding/smarthome/internal/order/domain"
	"github.com/wyfcoding/smarthome/pkg/outbox"
)

// outboxPublisher 订单事件写入 outbox 表，与订单写入处于同一事务
type outboxPublisher struct {
	store outbox.Store
}

// NewOutboxPublisher 创建订单事件发布者
func NewOutboxPublisher(store outbox.Store) domain.EventPublisher {
	return &outboxPublisher{store: store}
}

// Publish 记录一条待投递事件
func (p *outboxPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.store.Add(ctx, topic, key, event)
}
