package messaging

import (
	"context"

	"github.com/wyfcoding/smarthome/internal/user/domain"
	"github.com/wyfcoding/smarthome/pkg/outbox"
)

type outboxPublisher struct {
	store outbox.Store
}

// NewOutboxPublisher 创建基于 outbox 表的用户事件发布者
func NewOutboxPublisher(store outbox.Store) domain.EventPublisher {
	return &outboxPublisher{store: store}
}

func (p *outboxPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.store.Add(ctx, topic, key, event)
}
