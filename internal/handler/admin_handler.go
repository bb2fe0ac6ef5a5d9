// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strconv"
	"time"

	"blog-planner-go/internal/service"
	"blog-planner-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler 负责处理所有与管理员相关的 API 请求。
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers 返回所有用户。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers()
	if err != nil {
		log.Error("ListUsers: Failed to list users", err)
		respond(c, http.StatusInternalServerError, "获取用户列表失败", nil)
		return
	}
	respond(c, http.StatusOK, "success", users)
}

// ConversationMappings 返回 userID -> 当前对话 ID。
func (h *AdminHandler) ConversationMappings(c *gin.Context) {
	mappings, err := h.adminService.ConversationMappings(c.Request.Context())
	if err != nil {
		respond(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	respond(c, http.StatusOK, "success", mappings)
}

// GetAllConversations handles the request to get all conversation histories.
func (h *AdminHandler) GetAllConversations(c *gin.Context) {
	var userID *uint
	if userIDStr := c.Query("userid"); userIDStr != "" {
		id, err := strconv.ParseUint(userIDStr, 10, 32)
		if err != nil {
			respond(c, http.StatusBadRequest, "Invalid user ID format", nil)
			return
		}
		uid := uint(id)
		userID = &uid
	}

	var startTime, endTime *time.Time
	const timeLayout = "2006-01-02"
	if startDateStr := c.Query("start_date"); startDateStr != "" {
		t, err := time.Parse(timeLayout, startDateStr)
		if err != nil {
			respond(c, http.StatusBadRequest, "Invalid start_date format, use YYYY-MM-DD", nil)
			return
		}
		startTime = &t
	}
	if endDateStr := c.Query("end_date"); endDateStr != "" {
		t, err := time.Parse(timeLayout, endDateStr)
		if err != nil {
			respond(c, http.StatusBadRequest, "Invalid end_date format, use YYYY-MM-DD", nil)
			return
		}
		// Include the whole day
		t = t.Add(24*time.Hour - time.Second)
		endTime = &t
	}

	conversations, err := h.adminService.GetAllConversations(c.Request.Context(), userID, startTime, endTime)
	if err != nil {
		respond(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	respond(c, http.StatusOK, "success", conversations)
}
