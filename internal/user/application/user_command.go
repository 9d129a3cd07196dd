package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/smarthome/internal/user/domain"
	"github.com/wyfcoding/smarthome/pkg/apperror"
	"github.com/wyfcoding/smarthome/pkg/db"
	"github.com/wyfcoding/smarthome/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = apperror.Validation("invalid email or password")

// RegisterCommand 注册命令
type RegisterCommand struct {
	Name     string
	Email    string
	Password string
	Street   string
	City     string
	State    string
	ZipCode  string
	Role     string
}

// UpdateUserCommand 更新资料命令，Password 为空时保留原密码
type UpdateUserCommand struct {
	Name     string
	Email    string
	Password string
	Street   string
	City     string
	State    string
	ZipCode  string
}

// UserCommandService 用户命令服务
type UserCommandService struct {
	repo      domain.UserRepository
	publisher domain.EventPublisher
	tx        db.TxManager
	cost      int
	// 邮箱不存在时也做一次比较，避免通过响应时间探测账户
	dummyHash []byte
	now       func() time.Time
}

// NewUserCommandService 创建用户命令服务，cost 为 0 时使用 bcrypt 默认值
func NewUserCommandService(repo domain.UserRepository, publisher domain.EventPublisher, tx db.TxManager, cost int) (*UserCommandService, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, err
	}
	return &UserCommandService{
		repo:      repo,
		publisher: publisher,
		tx:        tx,
		cost:      cost,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

func (s *UserCommandService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperror.Validation("password must be at most 72 bytes")
		}
		return "", apperror.Internal(err, "failed to hash password")
	}
	return string(h), nil
}

func (s *UserCommandService) publish(ctx context.Context, topic, key string, event any) error {
	if err := s.publisher.Publish(ctx, topic, key, event); err != nil {
		return apperror.Internal(err, "failed to record user event")
	}
	return nil
}

// Register 注册用户，邮箱重复返回冲突
func (s *UserCommandService) Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error) {
	role, err := domain.ParseRole(cmd.Role)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(cmd.Name),
		Email:   domain.NormalizeEmail(cmd.Email),
		Street:  cmd.Street,
		City:    cmd.City,
		State:   cmd.State,
		ZipCode: cmd.ZipCode,
		Role:    role,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if cmd.Password == "" {
		return nil, apperror.Validation("password is required")
	}
	if user.Password, err = s.hash(cmd.Password); err != nil {
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByEmail(ctx, user.Email)
		if err != nil {
			return apperror.Internal(err, "failed to check email")
		}
		if existing != nil {
			return apperror.Conflict("email already exists")
		}
		if err := s.repo.Create(ctx, user); err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) {
				return apperror.Conflict("email already exists")
			}
			return apperror.Internal(err, "failed to register user")
		}
		return s.publish(ctx, domain.TopicUserRegistered, user.ID, domain.UserRegisteredEvent{
			UserID:    user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			Timestamp: s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "User registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login 校验邮箱与密码，失败统一返回 invalid email or password
func (s *UserCommandService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, apperror.Internal(err, "failed to load user")
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logger.Info(ctx, "Login rejected", "user_id", user.ID)
		return nil, errInvalidCredentials
	}
	return user, nil
}

// UpdateUser 整体覆盖资料字段
func (s *UserCommandService) UpdateUser(ctx context.Context, id string, cmd UpdateUserCommand) (*domain.User, error) {
	var hashed string
	if cmd.Password != "" {
		var err error
		if hashed, err = s.hash(cmd.Password); err != nil {
			return nil, err
		}
	}

	var updated *domain.User
	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return apperror.Internal(err, "failed to load user")
		}
		if user == nil {
			return apperror.NotFound("user not found")
		}

		email := domain.NormalizeEmail(cmd.Email)
		if email != user.Email {
			other, err := s.repo.GetByEmail(ctx, email)
			if err != nil {
				return apperror.Internal(err, "failed to check email")
			}
			if other != nil {
				return apperror.Conflict("email already exists")
			}
		}

		user.Name = strings.TrimSpace(cmd.Name)
		user.Email = email
		user.Street = cmd.Street
		user.City = cmd.City
		user.State = cmd.State
		user.ZipCode = cmd.ZipCode
		if hashed != "" {
			user.Password = hashed
		}
		if err := user.Validate(); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, user); err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) {
				return apperror.Conflict("email already exists")
			}
			return apperror.Internal(err, "failed to update user")
		}
		updated = user
		return s.publish(ctx, domain.TopicUserUpdated, user.ID, domain.UserUpdatedEvent{
			UserID:          user.ID,
			Email:           user.Email,
			PasswordChanged: hashed != "",
			Timestamp:       s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteUser 删除用户
func (s *UserCommandService) DeleteUser(ctx context.Context, id string) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		ok, err := s.repo.Delete(ctx, id)
		if err != nil {
			return apperror.Internal(err, "failed to delete user")
		}
		if !ok {
			return apperror.NotFound("user not found")
		}
		return s.publish(ctx, domain.TopicUserDeleted, id, domain.UserDeletedEvent{UserID: id, Timestamp: s.now()})
	})
}
