// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"blog-planner-go/internal/service"
	"blog-planner-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ConversationHandler 处理与对话相关的 API 请求。
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 创建一个新的 ConversationHandler。
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// GetConversation 返回用户当前对话的完整记录。
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	history, err := h.service.GetConversationHistory(c.Request.Context(), user.ID)
	if err != nil {
		log.Errorf("GetConversation: user %d, error: %v", user.ID, err)
		respond(c, http.StatusInternalServerError, "Failed to retrieve conversation history", nil)
		return
	}
	respond(c, http.StatusOK, "success", history)
}

// ResetConversation 开始新对话。
func (h *ConversationHandler) ResetConversation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, err := h.service.ResetConversation(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrAssistantResponding) {
			respond(c, http.StatusConflict, "助手正在回复，请稍后再开始新对话", nil)
			return
		}
		log.Errorf("ResetConversation: user %d, error: %v", user.ID, err)
		respond(c, http.StatusInternalServerError, "Failed to reset conversation", nil)
		return
	}
	respond(c, http.StatusOK, "success", gin.H{"conversationId": conversationID})
}
