package application

import "github.com/wyfcoding/smarthome/internal/user/domain"

// UserDTO 对外返回的用户资料，不含密码
type UserDTO struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Street  string      `json:"street"`
	City    string      `json:"city"`
	State   string      `json:"state"`
	ZipCode string      `json:"zip_code"`
	Role    domain.Role `json:"role"`
}

// ToUserDTO 转换为 DTO
func ToUserDTO(u *domain.User) *UserDTO {
	return &UserDTO{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Street:  u.Street,
		City:    u.City,
		State:   u.State,
		ZipCode: u.ZipCode,
		Role:    u.Role,
	}
}

// ToUserDTOs 批量转换
func ToUserDTOs(users []*domain.User) []*UserDTO {
	out := make([]*UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDTO(u))
	}
	return out
}
