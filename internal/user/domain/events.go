package domain

import "time"

const (
	TopicUserRegistered = "user.registered"
	TopicUserUpdated    = "user.updated"
	TopicUserDeleted    = "user.deleted"
)

// UserRegisteredEvent 用户注册事件
type UserRegisteredEvent struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// UserUpdatedEvent 用户资料更新事件
type UserUpdatedEvent struct {
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	PasswordChanged bool      `json:"password_changed"`
	Timestamp       time.Time `json:"timestamp"`
}

// UserDeletedEvent 用户删除事件
type UserDeletedEvent struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}
