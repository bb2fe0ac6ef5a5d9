// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"blog-planner-go/internal/service"
	"blog-planner-go/pkg/log"
	"blog-planner-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

// ChatHandler 负责处理聊天消息，支持 REST 与 WebSocket 两种入口。
type ChatHandler struct {
	chatService service.ChatService
	userService service.UserService
	jwtManager  *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, userService service.UserService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// SendMessageRequest 定义了发送消息 API 的请求体结构。
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage 提交一条用户消息，返回助手回复与最新计划。
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "无效的请求负载", nil)
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), user.ID, req.Content)
	if err != nil {
		status, message := chatErrorStatus(err)
		if status == http.StatusInternalServerError {
			log.Errorf("SendMessage: user %d, error: %v", user.ID, err)
		}
		respond(c, status, message, nil)
		return
	}
	respond(c, http.StatusOK, "success", result)
}

func chatErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest, "消息内容不能为空"
	case errors.Is(err, service.ErrAssistantResponding):
		return http.StatusConflict, "助手正在回复，请稍后再发送"
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "请求已取消"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "助手回复超时，请重试"
	default:
		return http.StatusInternalServerError, "AI服务暂时不可用，请稍后重试"
	}
}

// wsSession 串行化对同一连接的写操作。
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSession) writeJSON(v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(v); err != nil {
		log.Warnf("写入 WebSocket 消息失败: %v", err)
	}
}

func (s *wsSession) sendCompletion() {
	s.writeJSON(map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"message":   "响应已完成",
		"timestamp": time.Now().UnixMilli(),
		"date":      time.Now().Format("2006-01-02T15:04:05"),
	})
}

// Handle 处理一个传入的 WebSocket 连接。
// 每个文本帧是一条用户消息；{"type":"stop"} 取消正在进行的回复。
func (h *ChatHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyKind(tokenString, token.KindAccess)
	if err != nil {
		respond(c, http.StatusUnauthorized, "无效的 token", nil)
		return
	}
	if revoked, err := h.userService.IsTokenRevoked(c.Request.Context(), tokenString); err != nil || revoked {
		respond(c, http.StatusUnauthorized, "无效的 token", nil)
		return
	}
	user, err := h.userService.GetProfile(claims.UserID)
	if err != nil {
		respond(c, http.StatusUnauthorized, "用户不存在", nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()
	log.Infof("WebSocket 连接已建立，用户: %s", user.Email)

	sess := &wsSession{conn: conn}
	ctx, cancelAll := context.WithCancel(c.Request.Context())
	defer cancelAll()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inFlight = map[int]context.CancelFunc{}
		nextID   int
	)
	defer wg.Wait()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Infof("WebSocket 连接关闭，用户: %s, 原因: %v", user.Email, err)
			cancelAll()
			return
		}

		if isStopFrame(message) {
			mu.Lock()
			for _, cancel := range inFlight {
				cancel()
			}
			mu.Unlock()
			sess.writeJSON(map[string]interface{}{
				"type":      "stop",
				"message":   "响应已停止",
				"timestamp": time.Now().UnixMilli(),
				"date":      time.Now().Format("2006-01-02T15:04:05"),
			})
			continue
		}

		reqCtx, cancel := context.WithCancel(ctx)
		mu.Lock()
		id := nextID
		nextID++
		inFlight[id] = cancel
		mu.Unlock()

		wg.Add(1)
		go func(content string) {
			defer wg.Done()
			defer func() {
				mu.Lock()
				delete(inFlight, id)
				mu.Unlock()
				cancel()
			}()
			h.respondOverSocket(reqCtx, sess, user.ID, content)
		}(string(message))
	}
}

// respondOverSocket 处理一条消息；同一对话已有回复在进行时，服务层会直接拒绝。
func (h *ChatHandler) respondOverSocket(ctx context.Context, sess *wsSession, userID uint, content string) {
	result, err := h.chatService.SendMessage(ctx, userID, content)
	if err != nil {
		_, message := chatErrorStatus(err)
		if !errors.Is(err, service.ErrAssistantResponding) && !errors.Is(err, service.ErrEmptyMessage) {
			log.Errorf("处理 WebSocket 消息失败: %v", err)
		}
		sess.writeJSON(map[string]interface{}{"type": "error", "message": message})
		sess.sendCompletion()
		return
	}
	sess.writeJSON(map[string]interface{}{"type": "message", "userMessage": result.UserMessage, "message": result.AssistantMessage})
	sess.writeJSON(map[string]interface{}{"type": "plan", "plan": result.Plan})
	sess.sendCompletion()
}

func isStopFrame(message []byte) bool {
	if len(message) == 0 || message[0] != '{' {
		return false
	}
	var ctrl struct {
		Type string `json:"type"`
	}
	return json.Unmarshal(message, &ctrl) == nil && ctrl.Type == "stop"
}
