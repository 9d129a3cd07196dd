package application

// UserService 用户服务门面
type UserService struct {
	*UserCommandService
	*UserQueryService
}

// NewUserService 组合命令与查询服务
func NewUserService(cmd *UserCommandService, query *UserQueryService) *UserService {
	return &UserService{UserCommandService: cmd, UserQueryService: query}
}
