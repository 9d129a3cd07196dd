package application

import (
	"context"

	"github.com/wyfcoding/smarthome/internal/user/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
)

// UserQueryService 用户查询服务
type UserQueryService struct {
	repo domain.UserRepository
}

// NewUserQueryService 创建用户查询服务
func NewUserQueryService(repo domain.UserRepository) *UserQueryService {
	return &UserQueryService{repo: repo}
}

// GetUser 按 ID 查询
func (s *UserQueryService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load user")
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}
	return user, nil
}

// ListCustomers 列出全部 customer 角色的用户
func (s *UserQueryService) ListCustomers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListByRole(ctx, domain.RoleCustomer)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list customers")
	}
	return users, nil
}
