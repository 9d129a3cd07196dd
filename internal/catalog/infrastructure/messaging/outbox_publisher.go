package messaging

import (
	"context"

	"github.com/wyfcoding/smarthome/internal/catalog/domain"
	"github.com/wyfcoding/smarthome/pkg/outbox"
)

// outboxPublisher 基于 Outbox 模式的事件发布者实现
// 事件写入 outbox 表，ctx 中带有事务时与业务数据一同提交
type outboxPublisher struct {
	store outbox.Store
}

// NewOutboxPublisher 创建一个新的 OutboxPublisher 实例
func NewOutboxPublisher(store outbox.Store) domain.EventPublisher {
	return &outboxPublisher{store: store}
}

// Publish 记录一条待投递事件
func (p *outboxPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.store.Add(ctx, topic, key, event)
}
