package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blog-planner-go/internal/model"
	"blog-planner-go/internal/planner"
	"blog-planner-go/internal/repository"
	"blog-planner-go/pkg/log"
	"blog-planner-go/pkg/tasks"

	"gorm.io/gorm"
)

// ExportPublisher 把导出任务投递到队列。
type ExportPublisher interface {
	PublishExportTask(ctx context.Context, task tasks.PlanExportTask) error
}

// URLSigner 为已归档的导出文件生成下载链接。
type URLSigner interface {
	PresignedURL(ctx context.Context, objectName, fileName string, expiry time.Duration) (string, error)
}

// ExportView 是返回给前端的导出记录，完成后附带下载链接。
type ExportView struct {
	model.ExportRecord
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// PlanService 定义了计划读取与导出的接口。
type PlanService interface {
	// GetPlan 基于当前对话重新提取计划，对话过短时返回 nil。
	GetPlan(ctx context.Context, userID uint) (*model.BlogPlan, error)
	RequestExport(ctx context.Context, userID uint, format model.ExportFormat) (*model.ExportRecord, error)
	GetExport(ctx context.Context, userID, exportID uint) (*ExportView, error)
	ListExports(ctx context.Context, userID uint) ([]model.ExportRecord, error)
}

type planService struct {
	conversations ConversationService
	exportRepo    repository.ExportRepository
	publisher     ExportPublisher
	signer        URLSigner
	urlExpiry     time.Duration
}

// NewPlanService 创建一个新的 PlanService 实例。
func NewPlanService(conversations ConversationService, exportRepo repository.ExportRepository, publisher ExportPublisher, signer URLSigner, urlExpiry time.Duration) PlanService {
	return &planService{
		conversations: conversations,
		exportRepo:    exportRepo,
		publisher:     publisher,
		signer:        signer,
		urlExpiry:     urlExpiry,
	}
}

func (s *planService) GetPlan(ctx context.Context, userID uint) (*model.BlogPlan, error) {
	history, err := s.conversations.GetConversationHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return planner.Extract(history), nil
}

// RequestExport 保存计划快照并投递异步导出任务。
func (s *planService) RequestExport(ctx context.Context, userID uint, format model.ExportFormat) (*model.ExportRecord, error) {
	if !format.Valid() {
		return nil, ErrUnsupportedFormat
	}
	plan, err := s.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNoPlan
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	record := &model.ExportRecord{
		UserID:   userID,
		Format:   format,
		Title:    plan.Title,
		PlanJSON: string(planJSON),
		FileName: planner.FileName(*plan, format),
		Status:   model.ExportPending,
	}
	if err := s.exportRepo.Create(record); err != nil {
		return nil, fmt.Errorf("failed to create export record: %w", err)
	}

	task := tasks.PlanExportTask{
		ExportID: record.ID,
		UserID:   userID,
		Format:   format,
		FileName: record.FileName,
		Plan:     *plan,
	}
	if err := s.publisher.PublishExportTask(ctx, task); err != nil {
		log.Errorf("[PlanService] 投递导出任务失败, ExportID: %d, error: %v", record.ID, err)
		if markErr := s.exportRepo.MarkFailed(record.ID, err.Error()); markErr != nil {
			log.Errorf("[PlanService] 标记导出失败出错, ExportID: %d, error: %v", record.ID, markErr)
		}
		return nil, fmt.Errorf("failed to publish export task: %w", err)
	}

	log.Infof("[PlanService] 已投递导出任务, ExportID: %d, format: %s", record.ID, format)
	return record, nil
}

// GetExport 返回用户自己的导出记录，他人的记录视为不存在。
func (s *planService) GetExport(ctx context.Context, userID, exportID uint) (*ExportView, error) {
	record, err := s.exportRepo.FindByID(exportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, err
	}
	if record.UserID != userID {
		return nil, ErrExportNotFound
	}

	view := &ExportView{ExportRecord: *record}
	if record.Status == model.ExportCompleted && record.ObjectName != "" {
		url, err := s.signer.PresignedURL(ctx, record.ObjectName, record.FileName, s.urlExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to sign download url: %w", err)
		}
		view.DownloadURL = url
	}
	return view, nil
}

func (s *planService) ListExports(ctx context.Context, userID uint) ([]model.ExportRecord, error) {
	return s.exportRepo.FindByUser(userID)
}
