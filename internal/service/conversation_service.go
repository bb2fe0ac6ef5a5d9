// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"

	"blog-planner-go/internal/model"
	"blog-planner-go/internal/repository"
)

// ConversationService 定义了对话业务逻辑的接口。
type ConversationService interface {
	GetConversationHistory(ctx context.Context, userID uint) ([]model.Message, error)
	// ResetConversation 开始新对话，助手回复期间拒绝重置。
	ResetConversation(ctx context.Context, userID uint) (string, error)
}

type conversationService struct {
	repo repository.ConversationRepository
}

// NewConversationService 创建一个新的 ConversationService。
func NewConversationService(repo repository.ConversationRepository) ConversationService {
	return &conversationService{repo: repo}
}

// GetConversationHistory 获取用户当前会话的完整消息历史。
func (s *conversationService) GetConversationHistory(ctx context.Context, userID uint) ([]model.Message, error) {
	conversationID, err := s.repo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetConversationHistory(ctx, conversationID)
}

func (s *conversationService) ResetConversation(ctx context.Context, userID uint) (string, error) {
	conversationID, err := s.repo.GetOrCreateConversationID(ctx, userID)
	if err != nil {
		return "", err
	}
	responding, err := s.repo.IsResponding(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if responding {
		return "", ErrAssistantResponding
	}
	return s.repo.ResetConversation(ctx, userID)
}
