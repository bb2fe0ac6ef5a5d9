package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"blog-planner-go/internal/model"
	"blog-planner-go/internal/planner"
	"blog-planner-go/internal/service"
)

type stubUserService struct {
	users map[uint]*model.User
}

func (s *stubUserService) Register(name, email, _ string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return nil, service.ErrUserExists
		}
	}
	u := &model.User{ID: uint(len(s.users) + 1), Name: name, Email: email, Role: model.UserRoleUser}
	s.users[u.ID] = u
	return u, nil
}

func (s *stubUserService) Login(email, password string) (string, string, error) {
	if email == service.DemoUserEmail && password == service.DemoUserPassword {
		return "access", "refresh", nil
	}
	return "", "", service.ErrInvalidCredentials
}

func (s *stubUserService) GetProfile(id uint) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func (s *stubUserService) Logout(context.Context, string) error                 { return nil }
func (s *stubUserService) IsTokenRevoked(context.Context, string) (bool, error) { return false, nil }
func (s *stubUserService) RefreshToken(string) (string, string, error) {
	return "", "", errors.New("no")
}
func (s *stubUserService) EnsureDemoUser() error { return nil }

// stubChatService 用模板选择器回复，并用互斥标记模拟"正在回复"。
type stubChatService struct {
	mu         sync.Mutex
	transcript []model.Message
	responding bool
	hold       chan struct{}
}

func (s *stubChatService) SendMessage(ctx context.Context, _ uint, content string) (*service.ChatResult, error) {
	if content == "" {
		return nil, service.ErrEmptyMessage
	}
	s.mu.Lock()
	if s.responding {
		s.mu.Unlock()
		return nil, service.ErrAssistantResponding
	}
	s.responding = true
	userMsg := model.NewMessage(model.RoleUser, content)
	s.transcript = append(s.transcript, userMsg)
	transcript := append([]model.Message{}, s.transcript...)
	hold := s.hold
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.responding = false
		s.mu.Unlock()
	}()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	reply := planner.NewSelector(planner.DefaultTemplates()).Select(content, transcript)
	assistantMsg := model.NewMessage(model.RoleAssistant, reply)
	s.mu.Lock()
	s.transcript = append(s.transcript, assistantMsg)
	plan := planner.Extract(s.transcript)
	s.mu.Unlock()
	return &service.ChatResult{UserMessage: userMsg, AssistantMessage: assistantMsg, Plan: plan}, nil
}

type stubConversationService struct {
	responding bool
}

func (s *stubConversationService) GetConversationHistory(context.Context, uint) ([]model.Message, error) {
	return []model.Message{model.NewMessage(model.RoleUser, "hi")}, nil
}

func (s *stubConversationService) ResetConversation(context.Context, uint) (string, error) {
	if s.responding {
		return "", service.ErrAssistantResponding
	}
	return "conv-2", nil
}

type stubPlanService struct {
	plan    *model.BlogPlan
	exports map[uint]*service.ExportView
}

func (s *stubPlanService) GetPlan(context.Context, uint) (*model.BlogPlan, error) {
	return s.plan, nil
}

func (s *stubPlanService) RequestExport(_ context.Context, userID uint, format model.ExportFormat) (*model.ExportRecord, error) {
	if !format.Valid() {
		return nil, service.ErrUnsupportedFormat
	}
	if s.plan == nil {
		return nil, service.ErrNoPlan
	}
	return &model.ExportRecord{ID: 1, UserID: userID, Format: format, FileName: planner.FileName(*s.plan, format), CreatedAt: time.Now()}, nil
}

func (s *stubPlanService) GetExport(_ context.Context, userID, exportID uint) (*service.ExportView, error) {
	v, ok := s.exports[exportID]
	if !ok || v.UserID != userID {
		return nil, service.ErrExportNotFound
	}
	return v, nil
}

func (s *stubPlanService) ListExports(context.Context, uint) ([]model.ExportRecord, error) {
	return nil, nil
}

type stubSearchService struct{}

func (stubSearchService) SearchPlans(_ context.Context, _ uint, query string, _ int) ([]model.PlanSearchResult, error) {
	if query == "" {
		return []model.PlanSearchResult{}, nil
	}
	return []model.PlanSearchResult{{ExportID: 1, Title: query}}, nil
}

type stubAdminService struct{}

func (stubAdminService) ListUsers() ([]service.UserDetailResponse, error) { return nil, nil }
func (stubAdminService) ConversationMappings(context.Context) (map[uint]string, error) {
	return map[uint]string{1: "conv-1"}, nil
}
func (stubAdminService) GetAllConversations(context.Context, *uint, *time.Time, *time.Time) ([]service.ConversationEntry, error) {
	return []service.ConversationEntry{}, nil
}
