// Package pipeline 定义了博客计划导出的核心流程。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-planner-go/internal/model"
	"blog-planner-go/internal/planner"
	"blog-planner-go/internal/repository"
	"blog-planner-go/pkg/log"
	"blog-planner-go/pkg/tasks"
)

// ObjectUploader 把渲染好的文件写入对象存储。
type ObjectUploader interface {
	Put(ctx context.Context, objectName, contentType string, data []byte) error
}

// PlanIndexer 把计划写入检索索引。
type PlanIndexer interface {
	Index(ctx context.Context, doc model.PlanDocument) error
}

// Processor 封装了导出处理的所有依赖和逻辑。
type Processor struct {
	uploader   ObjectUploader
	indexer    PlanIndexer
	exportRepo repository.ExportRepository
	now        func() time.Time
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(uploader ObjectUploader, indexer PlanIndexer, exportRepo repository.ExportRepository) *Processor {
	return &Processor{
		uploader:   uploader,
		indexer:    indexer,
		exportRepo: exportRepo,
		now:        time.Now,
	}
}

// ObjectName 返回导出文件在存储桶中的路径。
func ObjectName(task tasks.PlanExportTask) string {
	return fmt.Sprintf("exports/%d/%d/%s", task.UserID, task.ExportID, task.FileName)
}

// Process 渲染、上传并索引一次导出，结束时更新导出记录的状态。
// 返回错误时消费者会重试，因此失败状态只在记录上体现，不影响重试。
func (p *Processor) Process(ctx context.Context, task tasks.PlanExportTask) error {
	log.Infof("[Processor] 开始处理导出, ExportID: %d, Format: %s, UserID: %d", task.ExportID, task.Format, task.UserID)

	objectName, err := p.run(ctx, task)
	if err != nil {
		log.Errorf("[Processor] 导出失败, ExportID: %d, Error: %v", task.ExportID, err)
		if markErr := p.exportRepo.MarkFailed(task.ExportID, err.Error()); markErr != nil {
			log.Errorf("[Processor] 更新导出状态失败, ExportID: %d, Error: %v", task.ExportID, markErr)
		}
		return err
	}

	if err := p.exportRepo.MarkCompleted(task.ExportID, objectName); err != nil {
		return fmt.Errorf("更新导出状态失败: %w", err)
	}
	log.Infof("[Processor] 导出完成, ExportID: %d, Object: %s", task.ExportID, objectName)
	return nil
}

func (p *Processor) run(ctx context.Context, task tasks.PlanExportTask) (string, error) {
	if task.FileName == "" {
		return "", errors.New("导出任务缺少文件名")
	}

	// 1. 渲染
	content, err := planner.Render(task.Plan, task.Format)
	if err != nil {
		return "", fmt.Errorf("渲染计划失败: %w", err)
	}
	log.Infof("[Processor] 步骤1: 渲染完成, 内容长度: %d 字节", len(content))

	// 2. 上传到对象存储
	objectName := ObjectName(task)
	if err := p.uploader.Put(ctx, objectName, planner.ContentType(task.Format), []byte(content)); err != nil {
		return "", fmt.Errorf("上传导出文件失败: %w", err)
	}
	log.Infof("[Processor] 步骤2: 上传完成, Object: %s", objectName)

	// 3. 写入检索索引
	doc := model.PlanDocument{
		ExportID:       task.ExportID,
		UserID:         task.UserID,
		Title:          task.Plan.Title,
		Description:    task.Plan.Description,
		TargetAudience: task.Plan.TargetAudience,
		Schedule:       task.Plan.Schedule,
		Topics:         task.Plan.Topics,
		ExportedAt:     p.now(),
	}
	if err := p.indexer.Index(ctx, doc); err != nil {
		return "", fmt.Errorf("索引计划失败: %w", err)
	}
	log.Info("[Processor] 步骤3: 索引完成")
	return objectName, nil
}
