// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"blog-planner-go/internal/model"
	"blog-planner-go/internal/repository"
)

// UserDetailResponse 定义了用户列表项的详细结构。
type UserDetailResponse struct {
	UserID    uint      `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationEntry 是管理员查看对话时的一条消息。
type ConversationEntry struct {
	UserID    uint       `json:"userId"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	Content   string     `json:"content"`
	Timestamp string     `json:"timestamp"`
}

// AdminService 接口定义了所有管理员相关的业务操作。
type AdminService interface {
	ListUsers() ([]UserDetailResponse, error)
	ConversationMappings(ctx context.Context) (map[uint]string, error)
	GetAllConversations(ctx context.Context, userID *uint, startTime, endTime *time.Time) ([]ConversationEntry, error)
}

// adminService 是 AdminService 接口的实现。
type adminService struct {
	userRepo         repository.UserRepository
	conversationRepo repository.ConversationRepository
}

// NewAdminService 创建一个新的 AdminService 实例。
func NewAdminService(userRepo repository.UserRepository, conversationRepo repository.ConversationRepository) AdminService {
	return &adminService{
		userRepo:         userRepo,
		conversationRepo: conversationRepo,
	}
}

func (s *adminService) ListUsers() ([]UserDetailResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}
	out := make([]UserDetailResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserDetailResponse{
			UserID:    u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	return out, nil
}

// ConversationMappings 返回 userID -> 当前对话 ID。
func (s *adminService) ConversationMappings(ctx context.Context) (map[uint]string, error) {
	return s.conversationRepo.GetAllUserConversationMappings(ctx)
}

// GetAllConversations retrieves conversation histories for all or a specific user, with optional date filtering.
func (s *adminService) GetAllConversations(ctx context.Context, userID *uint, startTime, endTime *time.Time) ([]ConversationEntry, error) {
	if userID != nil {
		user, err := s.userRepo.FindByID(*userID)
		if err != nil {
			return nil, errors.New("user not found")
		}
		return s.getConversationsForUser(ctx, user, startTime, endTime)
	}

	mappings, err := s.conversationRepo.GetAllUserConversationMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user conversation mappings from redis: %w", err)
	}

	// map 遍历无序，按用户 ID 输出保证结果稳定
	uids := make([]uint, 0, len(mappings))
	for uid := range mappings {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })

	all := []ConversationEntry{}
	for _, uid := range uids {
		user, err := s.userRepo.FindByID(uid)
		if err != nil {
			continue
		}
		entries, err := s.getConversationsForUser(ctx, user, startTime, endTime)
		if err != nil {
			continue
		}
		all = append(all, entries...)
	}
	return all, nil
}

func (s *adminService) getConversationsForUser(ctx context.Context, user *model.User, startTime, endTime *time.Time) ([]ConversationEntry, error) {
	conversationID, err := s.conversationRepo.GetOrCreateConversationID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation id: %w", err)
	}

	history, err := s.conversationRepo.GetConversationHistory(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	entries := []ConversationEntry{}
	for _, msg := range history {
		if startTime != nil && msg.Timestamp.Before(*startTime) {
			continue
		}
		if endTime != nil && msg.Timestamp.After(*endTime) {
			continue
		}
		entries = append(entries, ConversationEntry{
			UserID:    user.ID,
			Email:     user.Email,
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp.Format("2006-01-02T15:04:05"),
		})
	}
	return entries, nil
}
