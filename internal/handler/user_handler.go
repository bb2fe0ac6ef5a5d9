// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"blog-planner-go/internal/middleware"
	"blog-planner-go/internal/service"
	"blog-planner-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责处理所有与普通用户相关的 API 请求。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest 定义了用户注册 API 的请求体结构。
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register 处理用户注册请求，成功后直接签发 token。
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Register: Invalid request payload, error: %v", err)
		respond(c, http.StatusBadRequest, "无效的请求负载：姓名、邮箱和密码不能为空", nil)
		return
	}

	user, err := h.userService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			respond(c, http.StatusConflict, err.Error(), nil)
			return
		}
		log.Errorf("Register: User registration failed for '%s', error: %v", req.Email, err)
		respond(c, http.StatusInternalServerError, "注册失败", nil)
		return
	}

	accessToken, refreshToken, err := h.userService.Login(req.Email, req.Password)
	if err != nil {
		log.Errorf("Register: Auto login failed for '%s', error: %v", req.Email, err)
		respond(c, http.StatusInternalServerError, "注册成功但登录失败", nil)
		return
	}

	log.Infof("User '%s' registered successfully", user.Email)
	respond(c, http.StatusOK, "User registered successfully", gin.H{
		"user":         user,
		"token":        accessToken,
		"refreshToken": refreshToken,
	})
}

// LoginRequest 定义了用户登录 API 的请求体结构。
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理用户登录请求。
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		respond(c, http.StatusBadRequest, "无效的请求负载：邮箱和密码不能为空", nil)
		return
	}

	accessToken, refreshToken, err := h.userService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warnf("Login: User authentication failed for '%s'", req.Email)
			respond(c, http.StatusUnauthorized, err.Error(), nil)
			return
		}
		log.Errorf("Login: unexpected error for '%s': %v", req.Email, err)
		respond(c, http.StatusInternalServerError, "登录失败", nil)
		return
	}

	log.Infof("User '%s' logged in successfully", req.Email)
	respond(c, http.StatusOK, "Login successful", gin.H{
		"token":        accessToken,
		"refreshToken": refreshToken,
	})
}

// GetProfile 获取当前登录用户的个人信息。
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "success", user)
}

// Logout 处理用户登出逻辑。
func (h *UserHandler) Logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.userService.Logout(c.Request.Context(), c.GetString(middleware.ContextToken)); err != nil {
		log.Error("Logout: Failed to logout", err)
		respond(c, http.StatusInternalServerError, "登出失败", nil)
		return
	}

	log.Infof("User '%s' logged out successfully", user.Email)
	respond(c, http.StatusOK, "登出成功", nil)
}
