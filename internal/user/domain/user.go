// Package domain 用户领域模型
package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/wyfcoding/smarthome/pkg/apperror"
)

// Role 用户角色
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleSalesman Role = "salesman"
)

// ParseRole 空值视为 customer
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RoleCustomer, nil
	case RoleCustomer, RoleManager, RoleSalesman:
		return r, nil
	default:
		return "", apperror.Validation("unknown role %q", s)
	}
}

// User 用户账户，Password 保存 bcrypt 哈希
type User struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(80);not null"`
	Email     string    `gorm:"column:email;type:varchar(120);uniqueIndex;not null"`
	Password  string    `gorm:"column:password;type:varchar(72);not null"`
	Street    string    `gorm:"column:street;type:varchar(120)"`
	City      string    `gorm:"column:city;type:varchar(80)"`
	State     string    `gorm:"column:state;type:varchar(50)"`
	ZipCode   string    `gorm:"column:zip_code;type:varchar(20)"`
	Role      Role      `gorm:"column:role;type:varchar(20);default:customer"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string { return "users" }

// NormalizeEmail 邮箱统一小写存储，唯一性按小写比较
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate 校验资料字段，不涉及密码
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return apperror.Validation("name is required")
	}
	if u.Email == "" {
		return apperror.Validation("email is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return apperror.Validation("invalid email %q", u.Email)
	}
	return nil
}
