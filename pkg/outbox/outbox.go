// Package outbox 实现事务性发件箱：业务写入与事件记录在同一事务提交，由后台 Relay 异步投递到 Kafka
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/smarthome/pkg/db"
	"gorm.io/gorm"
)

// Status 事件投递状态
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	// StatusDead 超过最大重试次数，需人工处理
	StatusDead Status = "dead"
)

// Event 发件箱记录
type Event struct {
	ID        string     `gorm:"column:id;type:varchar(36);primaryKey"`
	Topic     string     `gorm:"column:topic;type:varchar(100);not null"`
	Key       string     `gorm:"column:msg_key;type:varchar(100)"`
	Payload   string     `gorm:"column:payload;type:text;not null"`
	Status    Status     `gorm:"column:status;type:varchar(16);index:idx_outbox_status_created,priority:1;not null"`
	Attempts  int        `gorm:"column:attempts;not null;default:0"`
	LastError string     `gorm:"column:last_error;type:varchar(512)"`
	CreatedAt time.Time  `gorm:"column:created_at;index:idx_outbox_status_created,priority:2"`
	SentAt    *time.Time `gorm:"column:sent_at"`
}

func (Event) TableName() string { return "outbox_events" }

// Store 发件箱存储
type Store interface {
	// Add 记录一条事件，ctx 中存在事务时加入该事务
	Add(ctx context.Context, topic, key string, payload any) error
	FetchPending(ctx context.Context, limit int) ([]Event, error)
	MarkSent(ctx context.Context, ids []string) error
	MarkFailed(ctx context.Context, id string, attempts int, status Status, reason string) error
}

// GormStore 基于 GORM 的发件箱存储
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建发件箱存储
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

// newEvent 编码负载并分配雪花 ID
func newEvent(topic, key string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outbox payload: %w", err)
	}
	return &Event{
		ID:      strconv.FormatUint(idgen.GenID(), 10),
		Topic:   topic,
		Key:     key,
		Payload: string(data),
		Status:  StatusPending,
	}, nil
}

// Add 实现 Store.Add
func (s *GormStore) Add(ctx context.Context, topic, key string, payload any) error {
	ev, err := newEvent(topic, key, payload)
	if err != nil {
		return err
	}
	if err := db.Conn(ctx, s.db).Create(ev).Error; err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// FetchPending 按写入顺序取出待投递事件
func (s *GormStore) FetchPending(ctx context.Context, limit int) ([]Event, error) {
	var events []Event
	err := s.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at asc").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox events: %w", err)
	}
	return events, nil
}

// MarkSent 标记为已投递
func (s *GormStore) MarkSent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return s.db.WithContext(ctx).Model(&Event{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": StatusSent, "sent_at": now}).Error
}

// MarkFailed 记录一次失败投递
func (s *GormStore) MarkFailed(ctx context.Context, id string, attempts int, status Status, reason string) error {
	if len(reason) > 512 {
		reason = reason[:512]
	}
	return s.db.WithContext(ctx).Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]any{"attempts": attempts, "status": status, "last_error": reason}).Error
}
