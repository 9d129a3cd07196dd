// Package memory 用户仓储的内存实现
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wyfcoding/smarthome/internal/user/domain"
)

// UserRepository 内存用户仓储，邮箱唯一约束与 SQL 实现一致
type UserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

// NewUserRepository 创建内存用户仓储
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.users {
		if u.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(user.Email, "") {
		return domain.ErrDuplicateEmail
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(user.Email, user.ID) {
		return domain.ErrDuplicateEmail
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *UserRepository) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0)
	for _, u := range r.users {
		if u.Role == role {
			u := u
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
