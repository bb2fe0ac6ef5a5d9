// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blog-planner-go/internal/assistant"
	"blog-planner-go/internal/model"
	"blog-planner-go/internal/planner"
	"blog-planner-go/internal/repository"
	"blog-planner-go/pkg/log"
)

// ChatResult 是一轮对话的结果：用户消息、助手回复与重新提取的计划。
type ChatResult struct {
	UserMessage      model.Message   `json:"userMessage"`
	AssistantMessage model.Message   `json:"assistantMessage"`
	Plan             *model.BlogPlan `json:"plan"`
}

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	SendMessage(ctx context.Context, userID uint, content string) (*ChatResult, error)
}

// respondingGrace 是回复标记相对回复超时多出的余量，覆盖超时后保存记录的时间。
const respondingGrace = 10 * time.Second

// defaultRespondingTTL 在未配置回复超时时使用。
const defaultRespondingTTL = 2 * time.Minute

type chatService struct {
	responder        assistant.Responder
	conversationRepo repository.ConversationRepository
	respondingTTL    time.Duration
}

// NewChatService 创建一个新的 ChatService 实例。
// respondingTTL 是单次回复的超时时间；回复标记的过期时间比它多 respondingGrace，
// 因此标记在回复结束前不会过期。
func NewChatService(responder assistant.Responder, conversationRepo repository.ConversationRepository, respondingTTL time.Duration) ChatService {
	if respondingTTL <= 0 {
		respondingTTL = defaultRespondingTTL
	}
	return &chatService{
		responder:        responder,
		conversationRepo: conversationRepo,
		respondingTTL:    respondingTTL,
	}
}

// SendMessage 追加用户消息，获取助手回复后追加回复，并基于完整记录重新提取计划。
// 同一对话同时只允许一条未完成的回复。
func (s *chatService) SendMessage(ctx context.Context, userID uint, content string) (*ChatResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	conversationID, err := s.conversationRepo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create conversation ID: %w", err)
	}

	lease, acquired, err := s.conversationRepo.TryMarkResponding(ctx, conversationID, s.respondingTTL+respondingGrace)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrAssistantResponding
	}
	defer func() {
		// 请求被取消时也要释放标记
		if err := s.conversationRepo.ClearResponding(context.Background(), conversationID, lease); err != nil {
			log.Errorf("[ChatService] 释放回复标记失败, conversation: %s, error: %v", conversationID, err)
		}
	}()

	history, err := s.conversationRepo.GetConversationHistory(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	userMsg := model.NewMessage(model.RoleUser, content)
	history = append(history, userMsg)
	if err := s.conversationRepo.UpdateConversationHistory(ctx, conversationID, history); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	replyCtx, cancel := context.WithTimeout(ctx, s.respondingTTL)
	reply, err := s.responder.Respond(replyCtx, content, history)
	cancel()
	if err != nil {
		// 只有取消或超时会走到这里，用户消息保持已提交
		return nil, err
	}

	assistantMsg := model.NewMessage(model.RoleAssistant, reply)
	history = append(history, assistantMsg)
	// 使用后台上下文，回复已经生成，即使请求被取消也要保存
	if err := s.conversationRepo.UpdateConversationHistory(context.Background(), conversationID, history); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	log.Infof("[ChatService] 对话 %s 完成一轮, 当前消息数: %d", conversationID, len(history))
	return &ChatResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Plan:             planner.Extract(history),
	}, nil
}
