package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/smarthome/internal/user/application"
	"github.com/wyfcoding/smarthome/pkg/response"
)

// UserHandler 用户 HTTP 处理器
type UserHandler struct {
	svc *application.UserService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(svc *application.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.GET("/user/:id", h.GetUser)
		api.PUT("/user/update/:id", h.UpdateUser)
		api.DELETE("/user/delete/:id", h.DeleteUser)
		api.GET("/customers", h.ListCustomers)
	}
}

// UserRequest 注册与更新共用的请求体，zipCode 沿用前端字段名
type UserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Role     string `json:"role"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 注册
func (h *UserHandler) Register(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.svc.Register(c.Request.Context(), application.RegisterCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Street:   req.Street,
		City:     req.City,
		State:    req.State,
		ZipCode:  req.ZipCode,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"message": "User registered successfully", "user_id": user.ID})
}

// Login 登录
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "email and password are required")
		return
	}
	user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"message": "Login successful",
		"user_id": user.ID,
		"name":    user.Name,
		"role":    user.Role,
	})
}

// GetUser 查询用户
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, application.ToUserDTO(user))
}

// UpdateUser 更新资料
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error())
		return
	}
	_, err := h.svc.UpdateUser(c.Request.Context(), c.Param("id"), application.UpdateUserCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Street:   req.Street,
		City:     req.City,
		State:    req.State,
		ZipCode:  req.ZipCode,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "User updated successfully")
}

// DeleteUser 删除用户
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.svc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "User deleted successfully")
}

// ListCustomers 客户列表
func (h *UserHandler) ListCustomers(c *gin.Context) {
	users, err := h.svc.ListCustomers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, application.ToUserDTOs(users))
}
