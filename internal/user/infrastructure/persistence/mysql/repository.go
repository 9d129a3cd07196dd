package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/smarthome/internal/user/domain"
	"github.com/wyfcoding/smarthome/pkg/db"
	"gorm.io/gorm"
)

type userRepository struct{ db *gorm.DB }

// NewUserRepository 创建用户仓储
func NewUserRepository(gdb *gorm.DB) domain.UserRepository {
	return &userRepository{db: gdb}
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.getDB(ctx).Create(user).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.getDB(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.getDB(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.getDB(ctx).Save(user).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.getDB(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete user: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	var users []*domain.User
	if err := r.getDB(ctx).Where("role = ?", string(role)).Order("name asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
