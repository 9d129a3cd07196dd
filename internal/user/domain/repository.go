package domain

import (
	"context"
	"errors"
)

// ErrDuplicateEmail 邮箱唯一索引冲突
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository 用户仓储接口，查询不到时返回 nil, nil
type UserRepository interface {
	// Create 邮箱已存在时返回 ErrDuplicateEmail
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Update 整体覆盖，邮箱与他人冲突时返回 ErrDuplicateEmail
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) (bool, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}

// EventPublisher 事件发布者
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
